package tmx

import (
	stdimage "image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmxfmt/tmx/psm"
)

func TestFromRasterDirect(t *testing.T) {
	src := stdimage.NewNRGBA(stdimage.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	src.SetNRGBA(1, 0, color.NRGBA{0, 255, 0, 128})

	img, err := FromRaster(NewRaster(src), psm.PSMCT32, "test")
	require.NoError(t, err)
	assert.False(t, img.IsIndexed())
	assert.Equal(t, 2, img.Width())
	assert.Equal(t, 1, img.Height())
	assert.Equal(t, "test", img.UserComment())

	pixels := img.Pixels()
	require.Len(t, pixels, 2)
	assert.Equal(t, Color{255, 0, 0, 255}, pixels[0])
}

func TestFromRasterIndexed(t *testing.T) {
	src := stdimage.NewNRGBA(stdimage.Rect(0, 0, 2, 2))
	colors := []color.NRGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}, {255, 255, 0, 255}}
	i := 0
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetNRGBA(x, y, colors[i])
			i++
		}
	}

	img, err := FromRaster(NewRaster(src), psm.PSMT4, "")
	require.NoError(t, err)
	require.True(t, img.IsIndexed())
	assert.Equal(t, 1, img.PaletteCount())
	assert.LessOrEqual(t, len(img.Palette(0)), 16)

	for _, idx := range img.Indices() {
		assert.Less(t, int(idx), img.PaletteColorCount())
	}
}

func TestFromRasterUnsupportedFormat(t *testing.T) {
	src := stdimage.NewNRGBA(stdimage.Rect(0, 0, 1, 1))
	_, err := FromRaster(NewRaster(src), psm.Format(0xFF), "")
	assert.ErrorIs(t, err, ErrUnsupportedPixelFormat)
}

func TestToRasterDirect(t *testing.T) {
	img := directImage(psm.PSMCT32, 2, 1, []psm.Color{{10, 20, 30, 255}, {40, 50, 60, 0}})

	raster, err := ToRaster(img, 0, -1)
	require.NoError(t, err)
	r, g, b, a := raster.At(0, 0).RGBA()
	assert.Equal(t, uint32(10*0x101), r)
	assert.Equal(t, uint32(20*0x101), g)
	assert.Equal(t, uint32(30*0x101), b)
	assert.Equal(t, uint32(255*0x101), a)
}

func TestToRasterCacheIdentity(t *testing.T) {
	img := directImage(psm.PSMCT32, 1, 1, []psm.Color{{1, 2, 3, 4}})

	first, err := ToRaster(img, 0, -1)
	require.NoError(t, err)
	second, err := ToRaster(img, 0, -1)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestToRasterIndexed(t *testing.T) {
	palette := Palette{{1, 2, 3, 255}, {4, 5, 6, 255}}
	img := indexedImage(psm.PSMT4, 2, 1, []uint8{0, 1}, palette)

	raster, err := ToRaster(img, 0, -1)
	require.NoError(t, err)
	pal, ok := raster.(*stdimage.Paletted)
	require.True(t, ok)
	assert.Len(t, pal.Palette, 2)
}

func TestToRasterOutOfRangePalette(t *testing.T) {
	img := indexedImage(psm.PSMT4, 1, 1, []uint8{0}, make(Palette, 16))
	_, err := ToRaster(img, 5, -1)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
