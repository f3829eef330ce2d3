package tmx

import (
	"errors"
	"fmt"
	"io"

	"github.com/tmxfmt/tmx/psm"
)

// Parse reads a TMX image from a reader positioned at the start of the
// TMX region and leaves the reader's position unspecified on error, per
// §7's "Partial reads leave the reader position unspecified" policy.
func Parse(r io.ReadSeeker) (*Image, error) {
	if _, err := readOuterHeader(r); err != nil {
		return nil, err
	}

	h, comment, err := readImageHeader(r)
	if err != nil {
		return nil, err
	}

	pixelFormat, err := validateHeader(h)
	if err != nil {
		return nil, err
	}

	img := &Image{
		pixelFormat:   pixelFormat,
		paletteFormat: psm.Format(h.PaletteFormat),
		mipKL:         h.MipKL,
		wrapModes:     h.WrapModes,
		userTextureID: h.UserTextureID,
		userClutID:    h.UserClutID,
		userComment:   comment,
	}

	indexed := pixelFormat.Indexed()

	if indexed {
		colorCount := pixelFormat.PaletteColorCount()
		pw, ph := paletteDimensions(colorCount)

		img.palettes = make([]Palette, h.PaletteCount)
		for i := 0; i < int(h.PaletteCount); i++ {
			colors, err := psm.DecodeDirect(r, img.paletteFormat, pw, ph)
			if err != nil {
				if errors.Is(err, psm.ErrShortRead) {
					err = fmt.Errorf("%w: %w", ErrInvalidFormat, err)
				}
				return nil, err
			}
			if colorCount == 256 {
				colors = psm.TilePalette(colors)
			}
			img.palettes[i] = Palette(colors)
		}
	}

	width, height := int(h.Width), int(h.Height)

	levels := make([]level, int(h.MipCount)+1)
	for k := range levels {
		lw, lh := width, height
		if k > 0 {
			lw, lh = mipDimensions(width, height, k)
		}

		lvl := level{width: lw, height: lh}
		if indexed {
			lvl.indices, err = psm.DecodeIndexed(r, pixelFormat, lw, lh)
		} else {
			lvl.colors, err = psm.DecodeDirect(r, pixelFormat, lw, lh)
		}
		if err != nil {
			if errors.Is(err, psm.ErrShortRead) {
				err = fmt.Errorf("%w: %w", ErrInvalidFormat, err)
			}
			return nil, err
		}
		levels[k] = lvl
	}
	img.levels = levels

	return img, nil
}

// Serialize writes img to w starting at its current position, following
// §4.5's reserve/write/backpatch protocol, and leaves w positioned just
// after the written bytes. Partial writes on I/O failure are not
// rewound, per §7.
func Serialize(w io.WriteSeeker, img *Image) error {
	if err := validateMips(img); err != nil {
		return err
	}

	start, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := w.Seek(start+outerHeaderAlign, io.SeekStart); err != nil {
		return err
	}

	if err := writeBody(w, img); err != nil {
		return err
	}

	end, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	if _, err := w.Seek(start, io.SeekStart); err != nil {
		return err
	}
	if err := writeOuterHeader(w, uint32(end-start)); err != nil {
		return err
	}

	_, err = w.Seek(end, io.SeekStart)
	return err
}

func writeBody(w io.Writer, img *Image) error {
	indexed := img.pixelFormat.Indexed()

	h := wireHeader{
		PaletteCount:  uint8(len(img.palettes)),
		PaletteFormat: uint8(img.paletteFormat),
		Width:         uint16(img.Width()),
		Height:        uint16(img.Height()),
		PixelFormat:   uint8(img.pixelFormat),
		MipCount:      uint8(len(img.levels) - 1),
		MipKL:         img.mipKL,
		WrapModes:     img.wrapModes,
		UserTextureID: img.userTextureID,
		UserClutID:    img.userClutID,
	}

	if err := writeImageHeader(w, h, img.userComment); err != nil {
		return err
	}

	if indexed {
		colorCount := img.pixelFormat.PaletteColorCount()
		pw, ph := paletteDimensions(colorCount)

		for _, p := range img.palettes {
			data := []psm.Color(p)
			if colorCount == 256 {
				data = psm.TilePalette(data)
			}
			if err := psm.EncodeDirect(w, img.paletteFormat, pw, ph, data); err != nil {
				return err
			}
		}
	}

	for _, lvl := range img.levels {
		var err error
		if indexed {
			err = psm.EncodeIndexed(w, img.pixelFormat, lvl.width, lvl.height, lvl.indices)
		} else {
			err = psm.EncodeDirect(w, img.pixelFormat, lvl.width, lvl.height, lvl.colors)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// paletteDimensions returns the square region a palette of colorCount
// entries is written as: 16x16 for a 256-color CLUT, 4x4 for a
// 16-color CLUT.
func paletteDimensions(colorCount int) (int, int) {
	if colorCount == 256 {
		return 16, 16
	}
	return 4, 4
}

func validateHeader(h wireHeader) (psm.Format, error) {
	pf := psm.Format(h.PixelFormat)
	if !pf.Valid() {
		return 0, fmt.Errorf("%w: unknown pixel_format 0x%02X", ErrInvalidFormat, h.PixelFormat)
	}

	indexed := pf.Indexed()
	if indexed != (h.PaletteCount > 0) {
		return 0, fmt.Errorf("%w: palette_count %d inconsistent with pixel_format %s", ErrInvalidFormat, h.PaletteCount, pf)
	}

	if indexed {
		switch psm.Format(h.PaletteFormat) {
		case psm.PSMCT32, psm.PSMCT24, psm.PSMCT16, psm.PSMCT16S:
		default:
			return 0, fmt.Errorf("%w: invalid palette_format 0x%02X", ErrInvalidFormat, h.PaletteFormat)
		}
	}

	return pf, nil
}

// validateMips rejects, at encode time only, any mip level the format
// permits on parse but not on write: a level whose divisor rule yields
// zero width or height (§9's open question, decided in favor of
// accept-on-parse/reject-on-encode).
func validateMips(img *Image) error {
	for k := 1; k < len(img.levels); k++ {
		lvl := img.levels[k]
		if lvl.width <= 0 || lvl.height <= 0 {
			return fmt.Errorf("%w: mip level %d has zero dimension", ErrInvalidFormat, k)
		}
	}
	return nil
}
