package report

import "strings"

// Column identifies a report column the engine knows how to validate
type Column int

const (
	ColumnOther Column = iota
	ColumnProtocolNumber
	ColumnSampleNumber
	ColumnCountTime
	ColumnCPMA
	ColumnCPMB
	ColumnCPMC
	ColumnEfficiency
	ColumnDate
	ColumnTime
)

// Row validation fragments. A normalized field never contains a comma, so
// the wildcard stops at the field boundary.
const (
	patternInteger  = `\d*`
	patternDecimal  = `\d+\.?\d*`
	patternWildcard = `[^,]*`
)

var columnMarkers = map[Column]string{
	ColumnProtocolNumber: "P#",
	ColumnSampleNumber:   "S#",
	ColumnCountTime:      "Count Time",
	ColumnCPMA:           "CPMA",
	ColumnCPMB:           "CPMB",
	ColumnCPMC:           "CPMC",
	ColumnEfficiency:     "tSIE",
	ColumnDate:           "DATE",
	ColumnTime:           "TIME",
}

// RequiredColumns must all be present in a header line
var RequiredColumns = []Column{
	ColumnProtocolNumber,
	ColumnSampleNumber,
	ColumnCountTime,
	ColumnCPMA,
	ColumnCPMB,
	ColumnCPMC,
	ColumnEfficiency,
	ColumnDate,
	ColumnTime,
}

// Marker returns the header text that names the column
func (c Column) Marker() string {
	return columnMarkers[c]
}

func (c Column) String() string {
	if m, ok := columnMarkers[c]; ok {
		return m
	}
	return "other"
}

func (c Column) pattern() string {
	switch c {
	case ColumnProtocolNumber, ColumnSampleNumber:
		return patternInteger
	case ColumnCountTime, ColumnCPMA, ColumnCPMB, ColumnCPMC, ColumnEfficiency:
		return patternDecimal
	default:
		return patternWildcard
	}
}

// identify maps a header cell to its column
func identify(cell string) Column {
	cell = strings.TrimSpace(cell)
	for _, c := range RequiredColumns {
		if strings.EqualFold(cell, columnMarkers[c]) {
			return c
		}
	}
	return ColumnOther
}
