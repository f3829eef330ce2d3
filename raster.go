package tmx

import (
	"fmt"
	stdimage "image"
	"image/color"

	"github.com/tmxfmt/tmx/psm"
	"github.com/tmxfmt/tmx/quant"
)

// Raster is the narrow contract the codec needs from a host bitmap:
// its dimensions, its pixels as a contiguous row-major ARGB buffer,
// and, for a host raster that is already indexed, its embedded
// palette up to max entries. Implementers may back this with any
// in-memory image library; NewRaster adapts the standard library's
// image.Image for callers who have nothing more specific.
type Raster interface {
	Dimensions() (width, height int)
	ReadARGB() []Color
	ReadPalette(max int) []Color
}

// NewRaster adapts any standard library image.Image to the Raster
// contract. If img is an *image.Paletted, its palette is exposed
// through ReadPalette; otherwise ReadPalette always returns nil.
func NewRaster(img stdimage.Image) Raster {
	return stdRaster{img}
}

type stdRaster struct {
	img stdimage.Image
}

func (r stdRaster) Dimensions() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

func (r stdRaster) ReadARGB() []Color {
	b := r.img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]Color, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rr, gg, bb, aa := r.img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out[y*w+x] = Color{
				R: uint8(rr >> 8),
				G: uint8(gg >> 8),
				B: uint8(bb >> 8),
				A: uint8(aa >> 8),
			}
		}
	}
	return out
}

func (r stdRaster) ReadPalette(max int) []Color {
	p, ok := r.img.(*stdimage.Paletted)
	if !ok {
		return nil
	}
	n := len(p.Palette)
	if n > max {
		n = max
	}
	out := make([]Color, n)
	for i := 0; i < n; i++ {
		rr, gg, bb, aa := p.Palette[i].RGBA()
		out[i] = Color{uint8(rr >> 8), uint8(gg >> 8), uint8(bb >> 8), uint8(aa >> 8)}
	}
	return out
}

// FromRaster encodes raster into a single-level TMX image (no mip
// levels: mipmap generation is out of scope, and there is no lower
// level than from_raster to supply pre-built ones) in the given pixel
// format. Indexed formats are quantized with the Wu algorithm; direct
// formats keep the raster's pixels unchanged, and the format's alpha
// convention is applied only when the image is serialized.
func FromRaster(raster Raster, format psm.Format, comment string) (*Image, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPixelFormat, format)
	}

	width, height := raster.Dimensions()
	pixels := raster.ReadARGB()

	img := &Image{
		pixelFormat: format,
		userComment: truncateComment(comment),
		mipKL:       mipKLUnset,
		wrapModes:   wrapModesUnset,
	}

	if format.Indexed() {
		n := format.PaletteColorCount()
		colors, indices, err := quant.Quantize(pixels, width, height, n, quant.Options{})
		if err != nil {
			return nil, fmt.Errorf("%w", ErrTooFewColors)
		}
		if len(colors) < n {
			padded := make([]psm.Color, n)
			copy(padded, colors)
			colors = padded
		}
		img.paletteFormat = psm.PSMCT32
		img.palettes = []Palette{Palette(colors)}
		img.levels = []level{{width: width, height: height, indices: indices}}
	} else {
		img.levels = []level{{width: width, height: height, colors: pixels}}
	}

	return img, nil
}

// ToRaster decodes image at the given palette and mip level to a
// standard library image.Image. mipIndex is -1 for the base level or
// 1..MipCount for a mip level, matching the spec's zero-copy contract:
// a repeated call with the same (paletteIndex, mipIndex) returns the
// same underlying image, per decodeCache.
func ToRaster(img *Image, paletteIndex, mipIndex int) (stdimage.Image, error) {
	if raster, ok := img.cache.get(paletteIndex, mipIndex); ok {
		return raster, nil
	}

	levelIdx := 0
	if mipIndex != -1 {
		levelIdx = mipIndex
	}
	if levelIdx < 0 || levelIdx >= len(img.levels) {
		return nil, fmt.Errorf("%w: mip index %d out of range", ErrInvalidFormat, mipIndex)
	}
	lvl := img.levels[levelIdx]

	var raster stdimage.Image
	if img.pixelFormat.Indexed() {
		if paletteIndex < 0 || paletteIndex >= len(img.palettes) {
			return nil, fmt.Errorf("%w: palette index %d out of range", ErrInvalidFormat, paletteIndex)
		}
		raster = paletteToImage(lvl, img.palettes[paletteIndex])
	} else {
		raster = colorsToNRGBA(lvl.width, lvl.height, lvl.colors)
	}

	img.cache.put(paletteIndex, mipIndex, raster)
	return raster, nil
}

func colorsToNRGBA(width, height int, colors []Color) *stdimage.NRGBA {
	out := stdimage.NewNRGBA(stdimage.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := colors[y*width+x]
			out.SetNRGBA(x, y, color.NRGBA{c.R, c.G, c.B, c.A})
		}
	}
	return out
}

func paletteToImage(lvl level, pal Palette) *stdimage.Paletted {
	cp := make(color.Palette, len(pal))
	for i, c := range pal {
		cp[i] = color.NRGBA{c.R, c.G, c.B, c.A}
	}

	out := stdimage.NewPaletted(stdimage.Rect(0, 0, lvl.width, lvl.height), cp)
	copy(out.Pix, lvl.indices)
	return out
}
