package refractometer

// RealExtract estimates real extract from original and apparent extract.
func RealExtract(oe, ae float64) float64 {
	return 0.1948*oe + 0.8052*ae
}

// AlcoholByWeight estimates alcohol by weight from original and real extract.
func AlcoholByWeight(oe, re float64) float64 {
	return (oe - re) / (2.0665 - (1.0665 * oe / 100.0))
}

// AlcoholByVolume converts alcohol by weight at the given final gravity.
func AlcoholByVolume(abw, fg float64) float64 {
	return abw * fg / 0.7907
}

// Degrees of fermentation follow A. Speers, "Brewing Calculations", 2015.

// ApparentDegreeOfFermentation returns the apparent attenuation in percent
func ApparentDegreeOfFermentation(oe, ae float64) float64 {
	return (oe - ae) * 100.0 / oe
}

// RealDegreeOfFermentation returns the real attenuation in percent
func RealDegreeOfFermentation(oe, re float64) float64 {
	return ((oe - re) * 100.0 / oe) * (1 / (1 - 0.005161*re))
}

// Nutrient content per MEBAK, Wort, Beer and Beer-based Beverages, 2013, p. 161.

// KilojoulesPer100mL returns energy content in kJ per 100 mL
func KilojoulesPer100mL(fg, re, abw float64) float64 {
	return fg * (14*re + 29*abw)
}

// KilocaloriesPer100mL returns energy content in kcal per 100 mL
func KilocaloriesPer100mL(fg, re, abw float64) float64 {
	return fg * (3.5*re + 7*abw)
}

// Derive fills every metric of a full result from a model's extracts. When
// abw is nil it is derived from original and real extract.
func Derive(model ModelID, ex Extracts, abw *float64) Result {
	r := NewResult(model)
	r.Stage = StageFull
	r.OE, r.AE, r.FG = ex.OE, ex.AE, ex.FG
	r.RE = RealExtract(ex.OE, ex.AE)
	if abw != nil {
		r.ABW = *abw
	} else {
		r.ABW = AlcoholByWeight(ex.OE, r.RE)
	}
	r.ABV = AlcoholByVolume(r.ABW, ex.FG)
	r.ADF = ApparentDegreeOfFermentation(ex.OE, ex.AE)
	r.RDF = RealDegreeOfFermentation(ex.OE, r.RE)
	r.Kcal = KilocaloriesPer100mL(ex.FG, r.RE, r.ABW)
	r.KJ = KilojoulesPer100mL(ex.FG, r.RE, r.ABW)
	return r
}
