package npy

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrUnsupportedDType     = errors.New("dtype has no numpy mapping")
	ErrUnsupportedNumpyType = errors.New("unsupported numpy type")
	ErrMalformedHeader      = errors.New("malformed npy header")
	ErrUnsupportedByteOrder = errors.New("unsupported byte order")
	ErrInvalidMagic         = errors.New("invalid magic bytes")
	ErrUnsupportedVersion   = errors.New("unsupported format version")
	ErrHeaderTooLarge       = errors.New("header exceeds maximum size")
	ErrTruncated            = errors.New("truncated file: fewer data bytes than header declares")
	ErrShortWrite           = errors.New("short write")
	ErrFortranOrder         = errors.New("fortran-ordered data is not supported")
)

// missingField reports a header dict that lacks a required field.
func missingField(field string) error {
	return fmt.Errorf("%w: missing %q", ErrMalformedHeader, field)
}
