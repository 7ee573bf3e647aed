package services

import "errors"

// Refractometer service errors
var (
	ErrInvalidPoint  = errors.New("invalid calibration point")
	ErrEmptyBatch    = errors.New("batch has no inputs")
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")
)
