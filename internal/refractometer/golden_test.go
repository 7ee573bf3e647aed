package refractometer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden tests pin every correlation model and the derived metrics to values
// computed once from the published formulas. Any drift is a regression.

const goldenDelta = 1e-9

type golden struct {
	oe, ae, fg, re, abw, abv, adf, rdf, kcal, kj float64
}

func assertGolden(t *testing.T, want golden, got Result) {
	t.Helper()
	assert.InDelta(t, want.oe, got.OE, goldenDelta, "OE")
	assert.InDelta(t, want.ae, got.AE, goldenDelta, "AE")
	assert.InDelta(t, want.fg, got.FG, goldenDelta, "FG")
	assert.InDelta(t, want.re, got.RE, goldenDelta, "RE")
	assert.InDelta(t, want.abw, got.ABW, goldenDelta, "ABW")
	assert.InDelta(t, want.abv, got.ABV, goldenDelta, "ABV")
	assert.InDelta(t, want.adf, got.ADF, goldenDelta, "ADF")
	assert.InDelta(t, want.rdf, got.RDF, goldenDelta, "RDF")
	assert.InDelta(t, want.kcal, got.Kcal, goldenDelta, "kcal")
	assert.InDelta(t, want.kj, got.KJ, goldenDelta, "kJ")
}

// TestGoldenModels runs each model on an uncalibrated 20 -> 10 °Bx
// fermentation with a neutral correction factor.
func TestGoldenModels(t *testing.T) {
	tests := []struct {
		model ModelID
		want  golden
	}{
		{TerrillLinear, golden{20, 4.531958958425207, 1.01780462, 7.545133353323976, 6.720735293911086,
			8.651062896091767, 77.34020520787396, 64.7975790336262, 74.76091857293066, 305.8840697236624}},
		{TerrillCubic, golden{20, 4.069135673640517, 1.01596138, 7.172468044415345, 6.9218281651115126,
			8.893777785189782, 79.65432163179742, 66.60311442974765, 74.73049752668233, 305.9543002014789}},
		{NovotnyLinear, golden{20, 4.023517152085219, 1.01578, 7.135736010859018, 6.94164903363964,
			8.917653035779022, 79.8824142395739, 66.78068797264608, 74.7275005256196, 305.96119035786893}},
		{NovotnyQuadratic, golden{20, 3.965147601794513, 1.015548, 7.088736848964942, 6.967010118192887,
			8.948189188706905, 80.17426199102744, 67.0077939452275, 74.72366619379811, 305.969997966703}},
		{Novotrill, golden{20, 4.023517152085219, 1.01578, 7.135736010859018, 6.94164903363964,
			8.917653035779022, 79.8824142395739, 66.78068797264608, 74.7275005256196, 305.96119035786893}},
		{Bonham, golden{20, 3.3028022182117525, 1.0129215200000001, 6.555416346104103, 7.25479368330234,
			9.293710187146841, 83.48598890894124, 69.57687826515033, 74.6801845281892, 306.06927475773375}},
		{Gardner, golden{20, 3.5000000000000018, 1.0136974736292939, 6.714200000000002, 7.169112885819123,
			9.190984723053068, 82.5, 68.81352533011241, 74.69276786467276, 306.0383830792091}},
		{Gossett, golden{20, 3.3296615606947313, 1.013023207298223, 6.577043488671398, 7.243123522193288,
			9.279691692562853, 83.35169219652634, 69.47298189110319, 74.6816074621844, 306.06388207004704}},
	}

	cal := NewCalibration(nil)
	for _, tt := range tests {
		t.Run(tt.model.String(), func(t *testing.T) {
			model, err := LookupModel(tt.model)
			require.NoError(t, err)

			got := Evaluate(cal, model, 20, 10, 1.0)
			assert.Equal(t, StageFull, got.Stage)
			assert.Equal(t, tt.model, got.Model)
			assertGolden(t, tt.want, got)
		})
	}
}

// TestGoldenModelsWithCorrectionFactor exercises the per-model differences
// in where the wort correction factor is applied.
func TestGoldenModelsWithCorrectionFactor(t *testing.T) {
	tests := []struct {
		model   ModelID
		oe, ae  float64
		fg, abv float64
	}{
		{TerrillLinear, 15.865384615384615, 3.5639828054961527, 1.013955870673077, 6.694693051816489},
		{TerrillCubic, 15.865384615384615, 3.5166807473659674, 1.0137684117337296, 6.719193404704756},
		{NovotnyLinear, 15.865384615384615, 3.1244161451526224, 1.0122160576923076, 6.922017210238855},
		{NovotnyQuadratic, 15.865384615384615, 3.0053687722231643, 1.0117457108912722, 6.983447727700587},
		{Novotrill, 15.865384615384615, 3.5639828054961527, 1.013955870673077, 6.694693051816489},
		{Bonham, 15.865384615384615, 3.153397351108481, 1.0123306145177002, 6.907053676803985},
		{Gardner, 15.865384615384615, 3.185423076923078, 1.0124528724003354, 6.890484564863389},
		{Gossett, 16.5, 2.8024789827506034, 1.010941410327604, 7.458937881947279},
	}

	cal := NewCalibration(nil)
	for _, tt := range tests {
		t.Run(tt.model.String(), func(t *testing.T) {
			model, err := LookupModel(tt.model)
			require.NoError(t, err)

			got := Evaluate(cal, model, 16.5, 8.2, 1.04)
			assert.InDelta(t, tt.oe, got.OE, goldenDelta, "OE")
			assert.InDelta(t, tt.ae, got.AE, goldenDelta, "AE")
			assert.InDelta(t, tt.fg, got.FG, goldenDelta, "FG")
			assert.InDelta(t, tt.abv, got.ABV, goldenDelta, "ABV")
		})
	}
}

func TestGoldenGossettABW(t *testing.T) {
	m, err := LookupModel(Gossett)
	require.NoError(t, err)

	am, ok := m.(ABWModel)
	require.True(t, ok, "gossett must expose its own ABW")
	assert.InDelta(t, 7.243123522193288, am.ABW(20, 10, 1.0), goldenDelta)
	// The correction factor does not enter the ABW term.
	assert.InDelta(t, am.ABW(20, 10, 1.0), am.ABW(20, 10, 1.1), goldenDelta)

	for _, id := range []ModelID{TerrillLinear, TerrillCubic, NovotnyLinear, NovotnyQuadratic, Novotrill, Bonham, Gardner} {
		other, err := LookupModel(id)
		require.NoError(t, err)
		_, ok := other.(ABWModel)
		assert.False(t, ok, "%s should derive ABW analytically", id)
	}
}

func TestGoldenNovotrillSelection(t *testing.T) {
	m, err := LookupModel(Novotrill)
	require.NoError(t, err)

	t.Run("low gravity uses Terrill", func(t *testing.T) {
		// Terrill 1.012429832, Novotny 1.012606: mean below 1.014
		got := m.Calc(12, 6.5, 1.0)
		assert.InDelta(t, 1.012429832, got.FG, goldenDelta)
		assert.InDelta(t, SGToPlato(1.012429832), got.AE, goldenDelta)
		assert.Equal(t, 12.0, got.OE)
	})

	t.Run("high gravity uses Novotny", func(t *testing.T) {
		// Terrill 1.01780462, Novotny 1.01578: mean above 1.014
		got := m.Calc(20, 10, 1.0)
		assert.InDelta(t, 1.01578, got.FG, goldenDelta)
	})
}

// TestNovotrillThreshold pins the comparison: a mean exactly at the
// threshold is not below it and selects Novotny.
func TestNovotrillThreshold(t *testing.T) {
	const bxi, bxf, wcf = 12.0, 6.803391155891641, 1.0

	terrill := terrillLinear{}.Calc(bxi, bxf, wcf)
	novotny := novotnyLinear{}.Calc(bxi, bxf, wcf)
	require.Equal(t, novotrillThreshold, (terrill.FG+novotny.FG)/2.0, "inputs must sit on the threshold")
	require.NotEqual(t, terrill.FG, novotny.FG)

	got := novotrill{}.Calc(bxi, bxf, wcf)
	assert.Equal(t, novotny.FG, got.FG)
	assert.Equal(t, SGToPlato(novotny.FG), got.AE)
	assert.Equal(t, terrill.OE, got.OE)
}

func TestDerivedMetricsPropagateNaN(t *testing.T) {
	nan := NewResult(TerrillLinear).OE
	r := Derive(TerrillLinear, Extracts{OE: nan, AE: 4, FG: 1.01}, nil)

	assert.True(t, isNaN(r.RE))
	assert.True(t, isNaN(r.ABW))
	assert.True(t, isNaN(r.ABV))
	assert.True(t, isNaN(r.ADF))
	assert.True(t, isNaN(r.RDF))
	assert.True(t, isNaN(r.Kcal))
	assert.True(t, isNaN(r.KJ))
}

func TestDeriveUsesSuppliedABW(t *testing.T) {
	abw := 5.0
	r := Derive(Gossett, Extracts{OE: 20, AE: 4, FG: 1.015}, &abw)

	assert.Equal(t, 5.0, r.ABW)
	assert.InDelta(t, AlcoholByVolume(5.0, 1.015), r.ABV, goldenDelta)
	assert.InDelta(t, KilocaloriesPer100mL(1.015, r.RE, 5.0), r.Kcal, goldenDelta)
}
