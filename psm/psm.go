/*
Package psm implements the PlayStation 2 Graphics Synthesizer pixel
storage mode transforms used by the TMX texture container: the wire
byte layout for each PSM pixel format, the CLUT tiling permutation
applied to 256-entry palettes, and the PSMT8 address swizzle.

Layouts follow the GS hardware conventions rather than any particular
host image library, matching the way bodgit/megasd/image packs its
own hardware-defined pixel layout directly with encoding/binary-style
byte shuffling instead of leaning on image/color.
*/
package psm

import "fmt"

// Format identifies a GS pixel storage mode.
type Format uint8

// The thirteen PSM variants a TMX file may reference. Values follow the
// GS PSM register encoding; the Z-variants share wire layout with their
// CT counterparts and only differ in which GS memory bank they target.
const (
	PSMCT32  Format = 0x00
	PSMCT24  Format = 0x01
	PSMCT16  Format = 0x02
	PSMCT16S Format = 0x0A
	PSMT8    Format = 0x13
	PSMT4    Format = 0x14
	PSMT8H   Format = 0x1B
	PSMT4HL  Format = 0x24
	PSMT4HH  Format = 0x2C
	PSMZ32   Format = 0x30
	PSMZ24   Format = 0x31
	PSMZ16   Format = 0x32
	PSMZ16S  Format = 0x3A
)

func (f Format) String() string {
	if n, ok := names[f]; ok {
		return n
	}
	return fmt.Sprintf("Format(0x%02X)", uint8(f))
}

var names = map[Format]string{
	PSMCT32:  "PSMCT32",
	PSMCT24:  "PSMCT24",
	PSMCT16:  "PSMCT16",
	PSMCT16S: "PSMCT16S",
	PSMT8:    "PSMT8",
	PSMT4:    "PSMT4",
	PSMT8H:   "PSMT8H",
	PSMT4HL:  "PSMT4HL",
	PSMT4HH:  "PSMT4HH",
	PSMZ32:   "PSMZ32",
	PSMZ24:   "PSMZ24",
	PSMZ16:   "PSMZ16",
	PSMZ16S:  "PSMZ16S",
}

// ParseFormat looks up a PSM variant by its canonical name (e.g.
// "PSMCT32"), for CLI flags and config that name formats as strings.
func ParseFormat(name string) (Format, bool) {
	for f, n := range names {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// Indexed reports whether f addresses pixels through a CLUT.
func (f Format) Indexed() bool {
	switch f {
	case PSMT8, PSMT8H, PSMT4, PSMT4HL, PSMT4HH:
		return true
	default:
		return false
	}
}

// Valid reports whether f is one of the thirteen recognised PSM variants.
func (f Format) Valid() bool {
	_, ok := names[f]
	return ok
}

// PaletteColorCount returns the number of CLUT entries an indexed format
// addresses: 16 for the 4-bit formats, 256 for the 8-bit formats, and 0
// for direct-color formats.
func (f Format) PaletteColorCount() int {
	switch f {
	case PSMT8, PSMT8H:
		return 256
	case PSMT4, PSMT4HL, PSMT4HH:
		return 16
	default:
		return 0
	}
}

// BitsPerElement returns the on-wire width of one pixel (direct formats)
// or one index (indexed formats).
func (f Format) BitsPerElement() int {
	switch f {
	case PSMCT32, PSMZ32:
		return 32
	case PSMCT24, PSMZ24:
		return 24
	case PSMCT16, PSMCT16S, PSMZ16, PSMZ16S:
		return 16
	case PSMT8, PSMT8H:
		return 8
	case PSMT4, PSMT4HL, PSMT4HH:
		return 4
	default:
		return 0
	}
}

// Color is an 8-bit RGBA color as stored in a TMX palette or direct pixel
// buffer. Alpha follows the GS convention on the wire (see the direct
// codecs); in memory it is always a plain 0-255 value.
type Color struct {
	R, G, B, A uint8
}
