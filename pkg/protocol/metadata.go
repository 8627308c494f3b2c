package protocol

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileName is the name of the protocol metadata file written by the instrument
const FileName = "prot.dat"

// Metadata field keys as written by the instrument
const (
	FieldProtocolNumber = "P#"
	FieldDate           = "DATE"
	FieldTime           = "TIME"
	FieldCountFile      = "COUNTFILE"
	FieldProtocolName   = "PROTNAME"
	FieldCountTime      = "CTIME"
	FieldLowerA         = "LLA"
	FieldUpperA         = "ULA"
	FieldLowerB         = "LLB"
	FieldUpperB         = "ULB"
	FieldLowerC         = "LLC"
	FieldUpperC         = "ULC"
	FieldVials          = "#/VIAL"
	FieldSamples        = "#/SMPL"
)

// IndependentSuffix marks a protocol whose samples are timed individually
const IndependentSuffix = "_inde.lsa"

// RequiredFields lists the keys the engine reads, in the order they are checked
var RequiredFields = []string{
	FieldProtocolNumber,
	FieldDate,
	FieldTime,
	FieldCountFile,
	FieldProtocolName,
	FieldCountTime,
	FieldLowerA, FieldUpperA,
	FieldLowerB, FieldUpperB,
	FieldLowerC, FieldUpperC,
}

// ThresholdFields is the fixed order channel thresholds are emitted in
var ThresholdFields = []string{
	FieldLowerA, FieldUpperA,
	FieldLowerB, FieldUpperB,
	FieldLowerC, FieldUpperC,
}

var nominalDateLayouts = []string{"02-01-06", "02-01-2006"}

// Metadata is the raw key/value record describing one counting run.
// Values are kept exactly as read; nothing is coerced at load time.
type Metadata map[string]string

// Load reads prot.dat from dir
func Load(dir string) (Metadata, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read protocol metadata: %w", err)
	}
	return Parse(string(data)), nil
}

// Parse decodes KEY=VALUE lines. The last line is a terminator written by
// the instrument and is always dropped, whatever it contains.
func Parse(text string) Metadata {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if strings.HasSuffix(text, "\n") {
		// Split leaves an empty element after a trailing newline
		lines = lines[:len(lines)-1]
	}
	if len(lines) > 0 {
		lines = lines[:len(lines)-1]
	}

	md := make(Metadata, len(lines))
	for _, line := range lines {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		md[key] = value
	}
	return md
}

// Validate checks that every field read by the engine is present
func (md Metadata) Validate() error {
	for _, key := range RequiredFields {
		if _, ok := md[key]; !ok {
			return &MissingMetadataFieldError{Field: key}
		}
	}
	return nil
}

// Get returns a field or a MissingMetadataFieldError
func (md Metadata) Get(key string) (string, error) {
	v, ok := md[key]
	if !ok {
		return "", &MissingMetadataFieldError{Field: key}
	}
	return v, nil
}

// ProtocolNumber returns the P# field
func (md Metadata) ProtocolNumber() string {
	return md[FieldProtocolNumber]
}

// CountFile returns the name of the raw report file
func (md Metadata) CountFile() string {
	return md[FieldCountFile]
}

// IsIndependent reports whether the protocol name carries the independent suffix
func (md Metadata) IsIndependent() bool {
	return strings.HasSuffix(md[FieldProtocolName], IndependentSuffix)
}

// Thresholds returns the six channel threshold values in emission order
func (md Metadata) Thresholds() ([]string, error) {
	out := make([]string, 0, len(ThresholdFields))
	for _, key := range ThresholdFields {
		v, err := md.Get(key)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// NominalDate returns the protocol date rendered as DD/MM/YYYY
func (md Metadata) NominalDate() (string, error) {
	raw, err := md.Get(FieldDate)
	if err != nil {
		return "", err
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range nominalDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("02/01/2006"), nil
		}
	}
	return "", &UnrecognizedDateFormatError{Value: raw}
}

// NominalTime returns the protocol time with its separators removed
func (md Metadata) NominalTime() (string, error) {
	raw, err := md.Get(FieldTime)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(raw, ":", ""), nil
}

// ReportFileName returns the companion .rtf report of the count file
func (md Metadata) ReportFileName() string {
	name := md.CountFile()
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".rtf"
}
