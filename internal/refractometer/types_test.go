package refractometer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelIDs(t *testing.T) {
	models := Models()
	require.Len(t, models, 8)
	for i, m := range models {
		assert.Equal(t, ModelID(i), m.ID(), "registry order must match selector order")
	}
	assert.Equal(t, "unknown", ModelID(8).String())
	assert.False(t, ModelID(8).IsValid())
}

func TestParseModelID(t *testing.T) {
	tests := []struct {
		in      string
		want    ModelID
		wantErr bool
	}{
		{"terrill-linear", TerrillLinear, false},
		{"Terrill-Cubic", TerrillCubic, false},
		{" novotrill ", Novotrill, false},
		{"gossett", Gossett, false},
		{"0", TerrillLinear, false},
		{"7", Gossett, false},
		{"8", 0, true},
		{"-1", 0, true},
		{"balling", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseModelID(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownModel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewResultIsUnset(t *testing.T) {
	r := NewResult(Bonham)
	assert.Equal(t, Bonham, r.Model)
	assert.Equal(t, StageNone, r.Stage)
	assert.True(t, isNaN(r.OE))
	assertUnsetExceptOE(t, r)
	assert.True(t, isNaN(r.OESG()))
	assert.False(t, r.IsComplete())
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "none", StageNone.String())
	assert.Equal(t, "preview", StagePreview.String())
	assert.Equal(t, "full", StageFull.String())
}
