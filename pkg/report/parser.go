package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mslinn/tricarb_transcoder/pkg/protocol"
)

// Result holds the outcome of parsing one report
type Result struct {
	Header  *Header
	Records []Record

	HeaderLine int // 1-based line number of the header
	Skipped    int // lines after the header rejected by the row validator
}

// NormalizeRow splits a raw line on the report delimiter, turns decimal
// commas into dots and rejoins the fields with a comma
func NormalizeRow(line string, delim rune) string {
	fields := strings.Split(line, string(delim))
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(strings.TrimSpace(f), ",", ".")
	}
	return strings.Join(fields, ",")
}

// Parse locates the header, filters the data rows and canonicalizes their
// date and time. Rows that fail validation are dropped silently.
func Parse(lines []string) (*Result, error) {
	h, at, err := FindHeader(lines)
	if err != nil {
		return nil, err
	}

	res := &Result{Header: h, HeaderLine: at + 1}
	for i := at + 1; i < len(lines); i++ {
		row := NormalizeRow(strings.TrimRight(lines[i], "\r"), h.Delimiter)
		if !h.Matches(row) {
			res.Skipped++
			continue
		}

		rec, err := NewRecord(h, strings.Split(row, ","))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		date, clock, err := CanonicalDateTime(rec.Get(ColumnDate), rec.Get(ColumnTime))
		if err != nil {
			return nil, &UnrecognizedDateFormatError{
				Line:  i + 1,
				Value: rec.Get(ColumnDate) + " " + rec.Get(ColumnTime),
			}
		}
		res.Records = append(res.Records, rec.withDateTime(date, clock))
	}

	return res, nil
}

// ReadLines reads a report file into lines, tolerating CRLF endings
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// Load parses the report named by the metadata's COUNTFILE field inside dir
func Load(dir string, md protocol.Metadata) (*Result, error) {
	name, err := md.Get(protocol.FieldCountFile)
	if err != nil {
		return nil, err
	}
	lines, err := ReadLines(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	return Parse(lines)
}
