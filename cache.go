package tmx

import "image"

// decodeCache holds the most recent ToRaster result for an Image,
// keyed by the (paletteIndex, mipIndex) pair it was built from. It
// exists purely to avoid redundant decode work when a caller re-reads
// the same raster repeatedly; nothing about its presence is observable
// beyond object identity of the returned image.Image; per §4.5 a
// second ToRaster call with different parameters simply replaces it.
type decodeCache struct {
	valid       bool
	paletteIdx  int
	mipIdx      int
	raster      image.Image
}

func (c *decodeCache) get(paletteIdx, mipIdx int) (image.Image, bool) {
	if c.valid && c.paletteIdx == paletteIdx && c.mipIdx == mipIdx {
		return c.raster, true
	}
	return nil, false
}

func (c *decodeCache) put(paletteIdx, mipIdx int, raster image.Image) {
	c.valid = true
	c.paletteIdx = paletteIdx
	c.mipIdx = mipIdx
	c.raster = raster
}
