package tmx

import (
	"strings"

	"github.com/tmxfmt/tmx/psm"
)

// Color is an alias for psm.Color so callers building or inspecting an
// Image never need to import the psm package directly.
type Color = psm.Color

// Palette is a fixed-length set of CLUT entries; its length is always
// either 16 or 256 (image.PaletteColorCount()).
type Palette []Color

// WrapMode is the two-bit GS texture wrap setting stored per axis in
// the wrap_modes header byte.
type WrapMode uint8

const (
	WrapRepeat WrapMode = 0
	WrapClamp  WrapMode = 1
)

const (
	commentFieldSize = 28
	commentMaxLen    = commentFieldSize - 1

	wrapModesUnset = 0xFF
	mipKLUnset     = 0xFFFF
)

// level holds one mip level's payload: either colors (direct formats)
// or indices (indexed formats), never both.
type level struct {
	width, height int
	colors        []Color
	indices       []uint8
}

// Image is a decoded TMX texture: a header's worth of metadata plus a
// base level and zero or more mip levels. Once built, only the fields
// documented on the setters below can change; everything else is fixed
// at construction, whether that construction was Parse or FromRaster.
type Image struct {
	pixelFormat   psm.Format
	paletteFormat psm.Format
	mipKL         uint16
	wrapModes     uint8
	userTextureID int32
	userClutID    int32
	userComment   string

	palettes []Palette
	levels   []level

	cache decodeCache
}

// Width returns the pixel width of the base level.
func (img *Image) Width() int { return img.levels[0].width }

// Height returns the pixel height of the base level.
func (img *Image) Height() int { return img.levels[0].height }

// PixelFormat returns the format the base and mip levels are stored in.
func (img *Image) PixelFormat() psm.Format { return img.pixelFormat }

// PaletteFormat returns the wire format of each palette entry, or 0 if
// the image is not indexed.
func (img *Image) PaletteFormat() psm.Format { return img.paletteFormat }

// IsIndexed reports whether the image carries palettes and indices
// rather than direct colors.
func (img *Image) IsIndexed() bool { return img.pixelFormat.Indexed() }

// PaletteCount returns the number of palettes carried by the image;
// zero for a direct-color image.
func (img *Image) PaletteCount() int { return len(img.palettes) }

// PaletteColorCount returns the number of entries in each palette: 16
// for 4-bit indexed formats, 256 for 8-bit indexed formats, 0 otherwise.
func (img *Image) PaletteColorCount() int { return img.pixelFormat.PaletteColorCount() }

// Palette returns a copy of the palette at index i.
func (img *Image) Palette(i int) Palette {
	p := make(Palette, len(img.palettes[i]))
	copy(p, img.palettes[i])
	return p
}

// MipCount returns the number of additional mip levels beyond the base.
func (img *Image) MipCount() int { return len(img.levels) - 1 }

// MipK returns the fractional mip K value packed into the header's
// mip_kl field. The stored sentinel 0xFFFF reports -0.0625 rather than
// being derived generically from the bit pattern.
func (img *Image) MipK() float64 {
	if img.mipKL == mipKLUnset {
		return -0.0625
	}
	raw := int16(img.mipKL<<4) >> 4 // sign-extend the low 12 bits
	return float64(raw) / 16
}

// MipL returns the integer mip L value packed into the header's mip_kl
// field. The stored sentinel 0xFFFF reports 3 rather than being derived
// generically from the bit pattern.
func (img *Image) MipL() uint8 {
	if img.mipKL == mipKLUnset {
		return 3
	}
	return uint8((img.mipKL >> 12) & 0xF)
}

// WrapHorizontal returns the horizontal wrap mode, bits 3:2 of
// wrap_modes. An unset (0xFF) field reports WrapRepeat.
func (img *Image) WrapHorizontal() WrapMode {
	if img.wrapModes == wrapModesUnset {
		return WrapRepeat
	}
	return WrapMode((img.wrapModes >> 2) & 0x3)
}

// WrapVertical returns the vertical wrap mode, bits 1:0 of wrap_modes.
// An unset (0xFF) field reports WrapRepeat.
func (img *Image) WrapVertical() WrapMode {
	if img.wrapModes == wrapModesUnset {
		return WrapRepeat
	}
	return WrapMode(img.wrapModes & 0x3)
}

// SetWrapModes sets the horizontal and vertical wrap modes. It is a
// no-op if the header's wrap_modes byte is currently the 0xFF sentinel:
// per the format, an image built without wrap modes never gains them.
func (img *Image) SetWrapModes(h, v WrapMode) {
	if img.wrapModes == wrapModesUnset {
		return
	}
	img.wrapModes = uint8(h&0x3)<<2 | uint8(v&0x3)
}

// UserTextureID returns the caller-defined texture identifier.
func (img *Image) UserTextureID() int32 { return img.userTextureID }

// SetUserTextureID sets the caller-defined texture identifier.
func (img *Image) SetUserTextureID(id int32) { img.userTextureID = id }

// UserClutID returns the caller-defined CLUT identifier.
func (img *Image) UserClutID() int32 { return img.userClutID }

// SetUserClutID sets the caller-defined CLUT identifier.
func (img *Image) SetUserClutID(id int32) { img.userClutID = id }

// UserComment returns the caller-defined comment string.
func (img *Image) UserComment() string { return img.userComment }

// SetUserComment sets the caller-defined comment. A NUL truncates the
// input, and anything longer than 27 bytes is truncated to fit the
// wire format's fixed 28-byte field; both are silent per the format's
// OversizedComment policy.
func (img *Image) SetUserComment(s string) {
	img.userComment = truncateComment(s)
}

func truncateComment(s string) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	if len(s) > commentMaxLen {
		s = s[:commentMaxLen]
	}
	return s
}

// Indices returns a copy of the base level's per-pixel palette indices.
// It returns an empty slice if the image is not indexed.
func (img *Image) Indices() []uint8 {
	return cloneBytes(img.levels[0].indices)
}

// MipIndices returns a copy of mip level k's (1-based) palette indices.
func (img *Image) MipIndices(k int) []uint8 {
	return cloneBytes(img.levels[k].indices)
}

// Pixels returns a copy of the base level's direct colors. It returns
// an empty slice if the image is indexed.
func (img *Image) Pixels() []Color {
	return cloneColors(img.levels[0].colors)
}

// MipPixels returns a copy of mip level k's (1-based) direct colors.
func (img *Image) MipPixels(k int) []Color {
	return cloneColors(img.levels[k].colors)
}

func cloneBytes(b []uint8) []uint8 {
	out := make([]uint8, len(b))
	copy(out, b)
	return out
}

func cloneColors(c []Color) []Color {
	out := make([]Color, len(c))
	copy(out, c)
	return out
}

// mipDimensions returns the width and height of mip level k (1-based):
// floor(width/(4k)) x floor(height/(4k)).
func mipDimensions(width, height, k int) (int, int) {
	return width / (4 * k), height / (4 * k)
}
