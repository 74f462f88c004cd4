package predict

import "errors"

var (
	// ErrInvalidInput is returned for malformed or insufficient arguments. It is
	// detected before any simulation work begins.
	ErrInvalidInput = errors.New("invalid input")

	// ErrArithmeticOverflow is returned when calibration or the simulated path
	// produces a non-finite value.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
)
