package quant

import "errors"

// ErrTooFewColors is returned when the input raster has no occupied
// histogram cells to build even a single palette entry from (an empty
// raster). Requesting more colors than there are distinct colors is not
// itself an error: Quantize simply returns a shorter palette.
var ErrTooFewColors = errors.New("quant: too few distinct colors to build a palette")
