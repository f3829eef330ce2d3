package psm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatIndexedAndPaletteColorCount(t *testing.T) {
	cases := []struct {
		f            Format
		indexed      bool
		paletteCount int
	}{
		{PSMCT32, false, 0},
		{PSMCT24, false, 0},
		{PSMCT16, false, 0},
		{PSMCT16S, false, 0},
		{PSMZ32, false, 0},
		{PSMT8, true, 256},
		{PSMT8H, true, 256},
		{PSMT4, true, 16},
		{PSMT4HL, true, 16},
		{PSMT4HH, true, 16},
	}

	for _, c := range cases {
		assert.Equal(t, c.indexed, c.f.Indexed(), c.f.String())
		assert.Equal(t, c.paletteCount, c.f.PaletteColorCount(), c.f.String())
		assert.True(t, c.f.Valid(), c.f.String())
	}
}

func TestFormatInvalid(t *testing.T) {
	assert.False(t, Format(0xFF).Valid())
	assert.Equal(t, "Format(0xFF)", Format(0xFF).String())
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("PSMT8")
	assert.True(t, ok)
	assert.Equal(t, PSMT8, f)

	_, ok = ParseFormat("bogus")
	assert.False(t, ok)
}
