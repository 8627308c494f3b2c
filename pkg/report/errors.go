package report

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrHeaderNotFound         = errors.New("report header not found")
	ErrUnrecognizedDateFormat = errors.New("unrecognized date format")
)

// HeaderNotFoundError is returned when no line of the report carries every
// required column
type HeaderNotFoundError struct {
	// Missing lists the columns that could not be resolved from the
	// detected header line. Empty when no line qualified at all.
	Missing []string
}

func (e *HeaderNotFoundError) Error() string {
	if len(e.Missing) == 0 {
		return "report header not found"
	}
	return fmt.Sprintf("report header not found: missing columns %s", strings.Join(e.Missing, ", "))
}

func (e *HeaderNotFoundError) Is(target error) bool {
	return target == ErrHeaderNotFound
}

// UnrecognizedDateFormatError is returned when a retained row's date and
// time match none of the accepted source layouts
type UnrecognizedDateFormatError struct {
	Line  int // 1-based line number in the report
	Value string
}

func (e *UnrecognizedDateFormatError) Error() string {
	return fmt.Sprintf("line %d: unrecognized date/time %q", e.Line, e.Value)
}

func (e *UnrecognizedDateFormatError) Is(target error) bool {
	return target == ErrUnrecognizedDateFormat
}
