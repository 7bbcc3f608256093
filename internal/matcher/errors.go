package matcher

import "errors"

// ErrMalformedMatrix is returned when an assignment problem is built from a
// score matrix with ragged rows or negative scores.
var ErrMalformedMatrix = errors.New("matcher: malformed score matrix")
