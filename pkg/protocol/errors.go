package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrMissingMetadataField   = errors.New("missing protocol metadata field")
	ErrUnrecognizedDateFormat = errors.New("unrecognized date format")
)

// MissingMetadataFieldError is returned when prot.dat lacks a field the engine reads
type MissingMetadataFieldError struct {
	Field string
}

func (e *MissingMetadataFieldError) Error() string {
	return fmt.Sprintf("protocol metadata is missing field %q", e.Field)
}

func (e *MissingMetadataFieldError) Is(target error) bool {
	return target == ErrMissingMetadataField
}

// UnrecognizedDateFormatError is returned when the nominal protocol date
// matches none of the accepted layouts
type UnrecognizedDateFormatError struct {
	Value string
}

func (e *UnrecognizedDateFormatError) Error() string {
	return fmt.Sprintf("unrecognized protocol date %q", e.Value)
}

func (e *UnrecognizedDateFormatError) Is(target error) bool {
	return target == ErrUnrecognizedDateFormat
}
