package verbatim

import "errors"

var (
	// ErrInvalidLengthBounds is returned when MinLength exceeds MaxLength.
	ErrInvalidLengthBounds = errors.New("min length exceeds max length")

	// ErrUnknownFormat is returned for an unrecognized format name.
	ErrUnknownFormat = errors.New("unknown verbatim format")
)
