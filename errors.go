package tmx

import "errors"

// Sentinel errors returned by this package. Wrap them with fmt.Errorf's
// %w verb when adding context, so errors.Is keeps working for callers.
var (
	// ErrInvalidFormat covers a magic tag mismatch, header fields that
	// violate the pixel_format/palette_count invariants, or a truncated
	// payload.
	ErrInvalidFormat = errors.New("tmx: invalid format")

	// ErrUnsupportedPixelFormat is returned when FromRaster is asked for
	// a pixel format outside the thirteen PSM variants.
	ErrUnsupportedPixelFormat = errors.New("tmx: unsupported pixel format")

	// ErrTooFewColors is quant.ErrTooFewColors surfaced under the tmx
	// package's own sentinel so callers only need to import one error
	// space.
	ErrTooFewColors = errors.New("tmx: quantizer could not build a palette")
)
