package report

import (
	"fmt"
	"strings"
)

// Record is one validated, normalized data row. Values are addressed by
// column through the header the record was parsed with.
type Record struct {
	header *Header
	values []string
}

// NewRecord binds values to a header
func NewRecord(h *Header, values []string) (Record, error) {
	if len(values) != len(h.Names) {
		return Record{}, fmt.Errorf("record has %d fields, header has %d", len(values), len(h.Names))
	}
	v := make([]string, len(values))
	copy(v, values)
	return Record{header: h, values: v}, nil
}

// Get returns the value of a recognized column, or "" when the header
// does not carry it
func (r Record) Get(c Column) string {
	i, ok := r.header.Index(c)
	if !ok {
		return ""
	}
	return r.values[i]
}

// Field returns the value under a header name
func (r Record) Field(name string) (string, bool) {
	for i, n := range r.header.Names {
		if n == name {
			return r.values[i], true
		}
	}
	return "", false
}

// Values returns a copy of the row values in header order
func (r Record) Values() []string {
	v := make([]string, len(r.values))
	copy(v, r.values)
	return v
}

// SampleID returns the S# value
func (r Record) SampleID() string {
	return r.Get(ColumnSampleNumber)
}

// Date returns the canonical DD/MM/YYYY date
func (r Record) Date() string {
	return r.Get(ColumnDate)
}

// Time returns the canonical HHMM time
func (r Record) Time() string {
	return r.Get(ColumnTime)
}

// Counts returns the three channel counts followed by the efficiency value
func (r Record) Counts() []string {
	return []string{
		r.Get(ColumnCPMA),
		r.Get(ColumnCPMB),
		r.Get(ColumnCPMC),
		r.Get(ColumnEfficiency),
	}
}

// String returns the canonical comma-delimited row
func (r Record) String() string {
	return strings.Join(r.values, ",")
}

// withDateTime returns a copy carrying the given date and time
func (r Record) withDateTime(date, clock string) Record {
	out := Record{header: r.header, values: r.Values()}
	if i, ok := r.header.Index(ColumnDate); ok {
		out.values[i] = date
	}
	if i, ok := r.header.Index(ColumnTime); ok {
		out.values[i] = clock
	}
	return out
}
