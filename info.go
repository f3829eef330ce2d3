package tmx

import "github.com/tmxfmt/tmx/psm"

// Info is a read-only summary of a parsed image's header fields,
// produced without materializing any pixel or palette data, the way
// image.DecodeConfig reports a standard library image's shape without
// decoding it.
type Info struct {
	Width, Height int
	PixelFormat   psm.Format
	PaletteFormat psm.Format
	PaletteCount  int
	MipCount      int
	WrapHorizontal, WrapVertical WrapMode
	UserTextureID, UserClutID int32
	UserComment   string
}

// Stat returns img's Info without copying any pixel or palette data.
func Stat(img *Image) Info {
	return Info{
		Width:          img.Width(),
		Height:         img.Height(),
		PixelFormat:    img.pixelFormat,
		PaletteFormat:  img.paletteFormat,
		PaletteCount:   img.PaletteCount(),
		MipCount:       img.MipCount(),
		WrapHorizontal: img.WrapHorizontal(),
		WrapVertical:   img.WrapVertical(),
		UserTextureID:  img.userTextureID,
		UserClutID:     img.userClutID,
		UserComment:    img.userComment,
	}
}
