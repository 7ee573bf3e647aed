package refractometer

import "fmt"

// Model converts an initial and a final Brix reading into extracts. Readings
// passed to Calc have already been through the calibration curve but not
// through the wort correction factor; each model decides which readings to
// correct.
type Model interface {
	ID() ModelID
	Calc(bxi, bxf, wcf float64) Extracts
}

// ABWModel is implemented by models that estimate alcohol by weight directly
// instead of deriving it from original and real extract.
type ABWModel interface {
	Model
	ABW(bxi, bxf, wcf float64) float64
}

var registry = [...]Model{
	TerrillLinear:    terrillLinear{},
	TerrillCubic:     terrillCubic{},
	NovotnyLinear:    novotnyLinear{},
	NovotnyQuadratic: novotnyQuadratic{},
	Novotrill:        novotrill{},
	Bonham:           bonham{},
	Gardner:          gardner{},
	Gossett:          gossett{},
}

// LookupModel returns the correlation model registered under id.
func LookupModel(id ModelID) (Model, error) {
	if !id.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModel, int(id))
	}
	return registry[id], nil
}

// Models returns every registered model in selector order.
func Models() []Model {
	out := make([]Model, len(registry))
	copy(out, registry[:])
	return out
}

// fgExtracts completes a model that yields final gravity directly.
func fgExtracts(oe, fg float64) Extracts {
	return Extracts{OE: oe, AE: SGToPlato(fg), FG: fg}
}

// Sean Terrill, "Refractometer FG Results", 2011.

type terrillLinear struct{}

func (terrillLinear) ID() ModelID { return TerrillLinear }

func (terrillLinear) Calc(bxi, bxf, wcf float64) Extracts {
	oe := CorrectBrix(bxi, wcf)
	bxfc := CorrectBrix(bxf, wcf)
	fg := 1.0 - 0.000856829*oe + 0.00349412*bxfc
	return fgExtracts(oe, fg)
}

type terrillCubic struct{}

func (terrillCubic) ID() ModelID { return TerrillCubic }

func (terrillCubic) Calc(bxi, bxf, wcf float64) Extracts {
	oe := CorrectBrix(bxi, wcf)
	bxfc := CorrectBrix(bxf, wcf)
	fg := 1.0 - 0.0044993*oe + 0.000275806*oe*oe -
		0.00000727999*oe*oe*oe + 0.0117741*bxfc -
		0.00127169*bxfc*bxfc + 0.0000632929*bxfc*bxfc*bxfc
	return fgExtracts(oe, fg)
}

// Petr Novotny, "Pocitame: Nova korekce refraktometru", 2017.

type novotnyLinear struct{}

func (novotnyLinear) ID() ModelID { return NovotnyLinear }

func (novotnyLinear) Calc(bxi, bxf, wcf float64) Extracts {
	oe := CorrectBrix(bxi, wcf)
	bxfc := CorrectBrix(bxf, wcf)
	fg := -0.002349*oe + 0.006276*bxfc + 1.0
	return fgExtracts(oe, fg)
}

type novotnyQuadratic struct{}

func (novotnyQuadratic) ID() ModelID { return NovotnyQuadratic }

func (novotnyQuadratic) Calc(bxi, bxf, wcf float64) Extracts {
	oe := CorrectBrix(bxi, wcf)
	bxfc := CorrectBrix(bxf, wcf)
	fg := 1.335e-5*oe*oe -
		3.239e-5*oe*bxfc +
		2.916e-5*bxfc*bxfc -
		2.421e-3*oe +
		6.219e-3*bxfc + 1.0
	return fgExtracts(oe, fg)
}

// novotrillThreshold splits the gravity range: below it Terrill's linear
// model is used, at or above it Novotny's.
const novotrillThreshold = 1.014

type novotrill struct{}

func (novotrill) ID() ModelID { return Novotrill }

func (novotrill) Calc(bxi, bxf, wcf float64) Extracts {
	t := terrillLinear{}.Calc(bxi, bxf, wcf)
	n := novotnyLinear{}.Calc(bxi, bxf, wcf)
	fg := n.FG
	if (t.FG+n.FG)/2.0 < novotrillThreshold {
		fg = t.FG
	}
	return fgExtracts(t.OE, fg)
}

// Louis K. Bonham, "The Use of Handheld Refractometers by Homebrewers",
// Zymurgy 24.1 (2001), pp. 43-46. Gardner's formula is from the same article.

type bonham struct{}

func (bonham) ID() ModelID { return Bonham }

// Calc uses the uncorrected final reading.
func (bonham) Calc(bxi, bxf, wcf float64) Extracts {
	oe := CorrectBrix(bxi, wcf)
	fg := 1.001843 - 0.002318474*oe - 0.000007775*oe*oe -
		0.000000034*oe*oe*oe + 0.00574*bxf +
		0.00003344*bxf*bxf + 0.000000086*bxf*bxf*bxf
	return fgExtracts(oe, fg)
}

type gardner struct{}

func (gardner) ID() ModelID { return Gardner }

// Calc uses the uncorrected final reading.
func (gardner) Calc(bxi, bxf, wcf float64) Extracts {
	oe := CorrectBrix(bxi, wcf)
	ae := 1.53*bxf - 0.59*oe
	return Extracts{OE: oe, AE: ae, FG: PlatoToSG(ae)}
}

// James M. Gossett, "Derivation and Explanation of the Brix-Based Calculator
// For Estimating ABV in Fermenting and Finished Beers", 2012.
//
// Gossett estimates alcohol by weight; apparent extract is back-derived from
// it. The original extract is the calibrated initial reading without the wort
// correction factor applied.
type gossett struct{}

func (gossett) ID() ModelID { return Gossett }

func (g gossett) Calc(bxi, bxf, wcf float64) Extracts {
	abw := g.ABW(bxi, bxf, wcf)
	ae := bxi - (abw*(2.0665-1.0665*bxi/100.0))/0.8052
	return Extracts{OE: bxi, AE: ae, FG: PlatoToSG(ae)}
}

// ABW computes alcohol by weight via the carbohydrate concentration term.
func (gossett) ABW(bxi, bxf, _ float64) float64 {
	const k = 0.445
	c := 100.0 * (bxi - bxf) / (100.0 - 48.4*k - 0.582*bxf)
	return 48.4 * c / (100 - 0.582*c)
}
