/*
Package quant implements Wu's color quantization algorithm: reducing a
true-color raster to a small palette plus a per-pixel index buffer.

The box-splitting/moment-table technique below follows Xiaolin Wu's
well known public-domain formulation (3-D histogram, cumulative
moments, variance-guided box splits). It replaces the median-cut
quantizer bodgit/megasd/tile/writer.go and image/writer.go delegate to
github.com/ericpauley/go-quantize/quantize, because that dependency's
Quantizer interface has no notion of per-box variance or of returning
anything besides a color.Palette. This package's box math is grounded
on Wu's algorithm as described in the standard references; the encoder
plumbing that calls it mirrors the teacher's encoder shape.
*/
package quant

import (
	"github.com/tmxfmt/tmx/psm"
)

const (
	side = 33 // 32 histogram bins per channel, 1-indexed for prefix sums

	dirRed = iota
	dirGreen
	dirBlue
)

// Options configures Quantize's optional behaviors. The zero value is
// the common case: no alpha snapping, no dithering.
type Options struct {
	// AlphaThreshold pins pixels whose alpha is below this value to a
	// dedicated transparent palette slot instead of quantizing their
	// color. Zero disables snapping entirely.
	AlphaThreshold uint8

	// Dither is a dithering level. Quantize does not read it and never
	// dithers, whatever its value; it exists so callers can carry the
	// value through unchanged rather than needing to special-case it.
	Dither int
}

// Quantize reduces pixels, a width*height row-major raster, to at most n
// palette colors using Wu's algorithm, and returns a matching per-pixel
// index buffer. The palette may be shorter than n if the raster has
// fewer distinct colors than requested.
func Quantize(pixels []psm.Color, width, height, n int, opts Options) ([]psm.Color, []uint8, error) {
	if width <= 0 || height <= 0 || len(pixels) == 0 || n <= 0 {
		return nil, nil, ErrTooFewColors
	}

	budget := n
	var transparent bool

	work := pixels
	remap := make([]int, len(pixels))

	if opts.AlphaThreshold > 0 {
		transparent = true
		work = make([]psm.Color, 0, len(pixels))
		for i, p := range pixels {
			if p.A < opts.AlphaThreshold {
				remap[i] = -1
				continue
			}
			remap[i] = len(work)
			work = append(work, p)
		}
		budget = n - 1
		if budget < 1 {
			budget = 1
		}
	} else {
		for i := range remap {
			remap[i] = i
		}
	}

	if len(work) == 0 {
		// Every pixel snapped to transparent; still return that one slot.
		palette := []psm.Color{{}}
		indices := make([]uint8, len(pixels))
		return palette, indices, nil
	}

	h := newWuHist()
	h.build(work)
	boxes := h.buildBoxes(budget)

	palette := make([]psm.Color, 0, len(boxes)+1)
	if transparent {
		palette = append(palette, psm.Color{})
	}
	for _, b := range boxes {
		palette = append(palette, h.mark(b))
	}

	indices := make([]uint8, len(pixels))
	searchFrom := 0
	if transparent {
		searchFrom = 1
	}
	for i, p := range pixels {
		if transparent && remap[i] == -1 {
			indices[i] = 0
			continue
		}
		indices[i] = uint8(searchFrom + nearest(palette[searchFrom:], p))
	}

	return palette, indices, nil
}

// nearest returns the index of the palette entry closest to c by squared
// Euclidean distance in RGB, breaking ties in favor of the lowest index.
func nearest(palette []psm.Color, c psm.Color) int {
	best := 0
	bestDist := int64(-1)
	for i, p := range palette {
		dr := int64(p.R) - int64(c.R)
		dg := int64(p.G) - int64(c.G)
		db := int64(p.B) - int64(c.B)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// wuBox is a rectangular region of the 32^3 color histogram, held with
// exclusive lower / inclusive upper bounds per axis so adjacent boxes
// can share a boundary without overlapping.
type wuBox struct {
	r0, r1, g0, g1, b0, b1 int
}

func (b wuBox) cells() int {
	return (b.r1 - b.r0) * (b.g1 - b.g0) * (b.b1 - b.b0)
}

type wuHist struct {
	wt, mr, mg, mb, ma, m2 []float64
}

func newWuHist() *wuHist {
	n := side * side * side
	return &wuHist{
		wt: make([]float64, n),
		mr: make([]float64, n),
		mg: make([]float64, n),
		mb: make([]float64, n),
		ma: make([]float64, n),
		m2: make([]float64, n),
	}
}

func idx(r, g, b int) int {
	return (r*side+g)*side + b
}

func (h *wuHist) build(pixels []psm.Color) {
	for _, c := range pixels {
		r := int(c.R)>>3 + 1
		g := int(c.G)>>3 + 1
		b := int(c.B)>>3 + 1
		i := idx(r, g, b)

		h.wt[i]++
		h.mr[i] += float64(c.R)
		h.mg[i] += float64(c.G)
		h.mb[i] += float64(c.B)
		h.ma[i] += float64(c.A)
		h.m2[i] += float64(c.R)*float64(c.R) + float64(c.G)*float64(c.G) + float64(c.B)*float64(c.B)
	}
	h.computeMoments()
}

// computeMoments turns the raw per-cell histogram into a 3-D cumulative
// sum table so that the sum over any axis-aligned box can be recovered
// in O(1) via the eight-corner inclusion-exclusion formula used by
// volume below.
func (h *wuHist) computeMoments() {
	var area, areaR, areaG, areaB, areaA, area2 [side]float64

	for r := 1; r < side; r++ {
		for i := range area {
			area[i], areaR[i], areaG[i], areaB[i], areaA[i], area2[i] = 0, 0, 0, 0, 0, 0
		}

		for g := 1; g < side; g++ {
			var line, lineR, lineG, lineB, lineA, line2 float64

			for b := 1; b < side; b++ {
				i := idx(r, g, b)

				line += h.wt[i]
				lineR += h.mr[i]
				lineG += h.mg[i]
				lineB += h.mb[i]
				lineA += h.ma[i]
				line2 += h.m2[i]

				area[b] += line
				areaR[b] += lineR
				areaG[b] += lineG
				areaB[b] += lineB
				areaA[b] += lineA
				area2[b] += line2

				prev := idx(r-1, g, b)
				h.wt[i] = h.wt[prev] + area[b]
				h.mr[i] = h.mr[prev] + areaR[b]
				h.mg[i] = h.mg[prev] + areaG[b]
				h.mb[i] = h.mb[prev] + areaB[b]
				h.ma[i] = h.ma[prev] + areaA[b]
				h.m2[i] = h.m2[prev] + area2[b]
			}
		}
	}
}

func (h *wuHist) volume(b wuBox, moment []float64) float64 {
	return moment[idx(b.r1, b.g1, b.b1)] -
		moment[idx(b.r1, b.g1, b.b0)] -
		moment[idx(b.r1, b.g0, b.b1)] +
		moment[idx(b.r1, b.g0, b.b0)] -
		moment[idx(b.r0, b.g1, b.b1)] +
		moment[idx(b.r0, b.g1, b.b0)] +
		moment[idx(b.r0, b.g0, b.b1)] -
		moment[idx(b.r0, b.g0, b.b0)]
}

// bottom is the part of volume(b, moment) that does not depend on the
// moving cut plane along axis dir.
func (h *wuHist) bottom(b wuBox, dir int, moment []float64) float64 {
	switch dir {
	case dirRed:
		return -moment[idx(b.r0, b.g1, b.b1)] +
			moment[idx(b.r0, b.g1, b.b0)] +
			moment[idx(b.r0, b.g0, b.b1)] -
			moment[idx(b.r0, b.g0, b.b0)]
	case dirGreen:
		return -moment[idx(b.r1, b.g0, b.b1)] +
			moment[idx(b.r1, b.g0, b.b0)] +
			moment[idx(b.r0, b.g0, b.b1)] -
			moment[idx(b.r0, b.g0, b.b0)]
	default: // dirBlue
		return -moment[idx(b.r1, b.g1, b.b0)] +
			moment[idx(b.r1, b.g0, b.b0)] +
			moment[idx(b.r0, b.g1, b.b0)] -
			moment[idx(b.r0, b.g0, b.b0)]
	}
}

// top is the part of volume(b, moment) up to the candidate cut plane at
// pos along axis dir.
func (h *wuHist) top(b wuBox, dir int, pos int, moment []float64) float64 {
	switch dir {
	case dirRed:
		return moment[idx(pos, b.g1, b.b1)] -
			moment[idx(pos, b.g1, b.b0)] -
			moment[idx(pos, b.g0, b.b1)] +
			moment[idx(pos, b.g0, b.b0)]
	case dirGreen:
		return moment[idx(b.r1, pos, b.b1)] -
			moment[idx(b.r1, pos, b.b0)] -
			moment[idx(b.r0, pos, b.b1)] +
			moment[idx(b.r0, pos, b.b0)]
	default: // dirBlue
		return moment[idx(b.r1, b.g1, pos)] -
			moment[idx(b.r1, b.g0, pos)] -
			moment[idx(b.r0, b.g1, pos)] +
			moment[idx(b.r0, b.g0, pos)]
	}
}

func (h *wuHist) variance(b wuBox) float64 {
	w := h.volume(b, h.wt)
	if w <= 0 {
		return 0
	}
	dr := h.volume(b, h.mr)
	dg := h.volume(b, h.mg)
	db := h.volume(b, h.mb)
	xx := h.volume(b, h.m2)
	return xx - (dr*dr+dg*dg+db*db)/w
}

// maximize finds the cut position along axis dir that minimizes the
// combined variance of the two resulting halves, expressed here as
// maximizing the "between-group" sum of squares.
func (h *wuHist) maximize(b wuBox, dir, first, last int, wholeR, wholeG, wholeB, wholeW float64) (cut int, best float64) {
	baseR := h.bottom(b, dir, h.mr)
	baseG := h.bottom(b, dir, h.mg)
	baseB := h.bottom(b, dir, h.mb)
	baseW := h.bottom(b, dir, h.wt)

	cut = -1
	for i := first; i < last; i++ {
		halfR := baseR + h.top(b, dir, i, h.mr)
		halfG := baseG + h.top(b, dir, i, h.mg)
		halfB := baseB + h.top(b, dir, i, h.mb)
		halfW := baseW + h.top(b, dir, i, h.wt)

		if halfW <= 0 {
			continue
		}
		temp := (halfR*halfR + halfG*halfG + halfB*halfB) / halfW

		restR, restG, restB, restW := wholeR-halfR, wholeG-halfG, wholeB-halfB, wholeW-halfW
		if restW <= 0 {
			continue
		}
		temp += (restR*restR + restG*restG + restB*restB) / restW

		if temp > best {
			best = temp
			cut = i
		}
	}
	return
}

// cut attempts to split set1 in two along whichever axis best separates
// its color mass, writing the upper half into set2. It reports false if
// no axis has room for an interior split with weight on both sides.
func (h *wuHist) cut(set1 *wuBox, set2 *wuBox) bool {
	wholeR := h.volume(*set1, h.mr)
	wholeG := h.volume(*set1, h.mg)
	wholeB := h.volume(*set1, h.mb)
	wholeW := h.volume(*set1, h.wt)

	cutR, maxR := h.maximize(*set1, dirRed, set1.r0+1, set1.r1, wholeR, wholeG, wholeB, wholeW)
	cutG, maxG := h.maximize(*set1, dirGreen, set1.g0+1, set1.g1, wholeR, wholeG, wholeB, wholeW)
	cutB, maxB := h.maximize(*set1, dirBlue, set1.b0+1, set1.b1, wholeR, wholeG, wholeB, wholeW)

	var dir int
	switch {
	case maxR >= maxG && maxR >= maxB:
		if cutR < 0 {
			return false
		}
		dir = dirRed
	case maxG >= maxR && maxG >= maxB:
		if cutG < 0 {
			return false
		}
		dir = dirGreen
	default:
		if cutB < 0 {
			return false
		}
		dir = dirBlue
	}

	*set2 = *set1
	switch dir {
	case dirRed:
		set2.r0, set1.r1 = cutR, cutR
	case dirGreen:
		set2.g0, set1.g1 = cutG, cutG
	case dirBlue:
		set2.b0, set1.b1 = cutB, cutB
	}
	return true
}

// buildBoxes repeatedly splits the box with the largest weighted
// variance until n boxes exist or no remaining box can usefully be
// split further.
func (h *wuHist) buildBoxes(n int) []wuBox {
	boxes := []wuBox{{0, side - 1, 0, side - 1, 0, side - 1}}
	closed := []bool{false}

	for len(boxes) < n {
		best := -1
		bestVar := -1.0
		for i, b := range boxes {
			if closed[i] || b.cells() <= 1 {
				continue
			}
			if v := h.variance(b); v > bestVar {
				bestVar = v
				best = i
			}
		}
		if best < 0 || bestVar <= 0 {
			break
		}

		set1 := boxes[best]
		var set2 wuBox
		if !h.cut(&set1, &set2) {
			closed[best] = true
			continue
		}

		boxes[best] = set1
		boxes = append(boxes, set2)
		closed = append(closed, false)
	}

	return boxes
}

// mark computes the centroid color of a final box: mean R, G, B weighted
// by pixel count, and mean alpha of the pixels it contains.
func (h *wuHist) mark(b wuBox) psm.Color {
	w := h.volume(b, h.wt)
	if w <= 0 {
		return psm.Color{}
	}
	r := h.volume(b, h.mr) / w
	g := h.volume(b, h.mg) / w
	bl := h.volume(b, h.mb) / w
	a := h.volume(b, h.ma) / w
	return psm.Color{
		R: round8(r),
		G: round8(g),
		B: round8(bl),
		A: round8(a),
	}
}

func round8(v float64) uint8 {
	v += 0.5
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
