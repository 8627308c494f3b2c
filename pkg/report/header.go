package report

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Header describes the column layout of one report
type Header struct {
	Names     []string // column names in header order, trimmed
	Columns   []Column // identity of each column, parallel to Names
	Delimiter rune     // field delimiter used by the source report

	index     map[Column]int
	validator *regexp.Regexp
}

// IsHeaderLine reports whether line contains every required marker,
// in any order and with any surrounding text
func IsHeaderLine(line string) bool {
	for _, c := range RequiredColumns {
		if !strings.Contains(line, c.Marker()) {
			return false
		}
	}
	return true
}

// InferDelimiter returns the character immediately preceding the sample
// number marker, or the protocol number marker when the sample marker opens
// the line. The visible separator can collide with a decimal comma, so it
// is never assumed.
func InferDelimiter(line string) (rune, error) {
	for _, c := range []Column{ColumnSampleNumber, ColumnProtocolNumber} {
		if i := strings.Index(line, c.Marker()); i > 0 {
			r, _ := utf8.DecodeLastRuneInString(line[:i])
			return r, nil
		}
	}
	return 0, errors.New("cannot infer delimiter: no character precedes the sample or protocol marker")
}

// ParseHeader derives the delimiter and column order from a header line
func ParseHeader(line string) (*Header, error) {
	delim, err := InferDelimiter(line)
	if err != nil {
		return nil, err
	}
	return NewHeader(strings.Split(NormalizeRow(line, delim), ","), delim)
}

// NewHeader builds a header from column names. Every required column must
// resolve to exactly one position.
func NewHeader(names []string, delim rune) (*Header, error) {
	h := &Header{
		Names:     make([]string, len(names)),
		Columns:   make([]Column, len(names)),
		Delimiter: delim,
		index:     make(map[Column]int),
	}

	parts := make([]string, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		c := identify(name)
		h.Names[i] = name
		h.Columns[i] = c
		if _, seen := h.index[c]; !seen && c != ColumnOther {
			h.index[c] = i
		}
		parts[i] = c.pattern()
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := h.index[c]; !ok {
			missing = append(missing, c.Marker())
		}
	}
	if len(missing) > 0 {
		return nil, &HeaderNotFoundError{Missing: missing}
	}

	h.validator = regexp.MustCompile("^" + strings.Join(parts, ",") + "$")
	return h, nil
}

// FindHeader returns the first header line and its zero-based position
func FindHeader(lines []string) (*Header, int, error) {
	for i, line := range lines {
		if !IsHeaderLine(line) {
			continue
		}
		h, err := ParseHeader(line)
		if err != nil {
			return nil, i, err
		}
		return h, i, nil
	}
	return nil, -1, &HeaderNotFoundError{}
}

// Index returns the position of a column
func (h *Header) Index(c Column) (int, bool) {
	i, ok := h.index[c]
	return i, ok
}

// Canonical returns the header with the delimiter normalized to a comma
func (h *Header) Canonical() string {
	return strings.Join(h.Names, ",")
}

// Pattern returns the full-row validator source
func (h *Header) Pattern() string {
	return h.validator.String()
}

// Matches reports whether a normalized row satisfies the full-row validator
func (h *Header) Matches(row string) bool {
	return h.validator.MatchString(row)
}
