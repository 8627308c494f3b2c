package frame

import "strings"

// Layout selects how count records are laid out in output frames
type Layout int

const (
	// LayoutDependent emits one frame for the whole run
	LayoutDependent Layout = iota
	// LayoutIndependent emits one frame per distinct sample
	LayoutIndependent
)

func (l Layout) String() string {
	if l == LayoutIndependent {
		return "independent"
	}
	return "dependent"
}

// Field positions shared by both layouts
const (
	FieldInstrumentCode = 0
	FieldProtocolNumber = 1
	FieldDate           = 2
	FieldTime           = 3
)

// Frame is one comma-delimited output record
type Frame struct {
	// SampleID is the sample an independent frame was built for; empty for
	// dependent frames.
	SampleID string

	fields []string
}

// New returns a frame holding a copy of fields
func New(sampleID string, fields []string) Frame {
	f := Frame{SampleID: sampleID, fields: make([]string, len(fields))}
	copy(f.fields, fields)
	return f
}

// Fields returns a copy of the frame fields
func (f Frame) Fields() []string {
	out := make([]string, len(f.fields))
	copy(out, f.fields)
	return out
}

// Field returns the field at position i, or "" when out of range
func (f Frame) Field(i int) string {
	if i < 0 || i >= len(f.fields) {
		return ""
	}
	return f.fields[i]
}

// Len returns the number of fields
func (f Frame) Len() int {
	return len(f.fields)
}

func (f Frame) String() string {
	return strings.Join(f.fields, ",")
}
