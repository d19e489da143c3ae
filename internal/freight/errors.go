package freight

import "errors"

var (
	// ErrInvalidIncrement is returned when a tier increment is zero or negative.
	ErrInvalidIncrement = errors.New("invalid rate increment")
	// ErrTypeConversion is returned when a weight cell is not a number.
	ErrTypeConversion = errors.New("weight is not a number")
)
