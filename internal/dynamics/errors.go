package dynamics

import "errors"

// ErrInvalidInput is wrapped by every caller-side input error. The engine
// never computes a partial result for a malformed runner.
var ErrInvalidInput = errors.New("invalid prediction input")
