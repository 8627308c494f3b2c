package frame

import (
	"github.com/mslinn/tricarb_transcoder/pkg/protocol"
	"github.com/mslinn/tricarb_transcoder/pkg/report"
)

// LayoutOf returns the layout class encoded in the protocol name
func LayoutOf(md protocol.Metadata) Layout {
	if md.IsIndependent() {
		return LayoutIndependent
	}
	return LayoutDependent
}

// Build turns canonical count records into output frames. Records must be
// in report read order; the dependent layout depends on it.
func Build(instrumentCode string, md protocol.Metadata, records []report.Record) ([]Frame, error) {
	if err := md.Validate(); err != nil {
		return nil, err
	}

	settings, err := runSettings(md)
	if err != nil {
		return nil, err
	}
	prefix := []string{instrumentCode, md.ProtocolNumber()}

	if LayoutOf(md) == LayoutIndependent {
		return buildIndependent(prefix, settings, records), nil
	}

	date, err := md.NominalDate()
	if err != nil {
		return nil, err
	}
	clock, err := md.NominalTime()
	if err != nil {
		return nil, err
	}
	return []Frame{buildDependent(prefix, date, clock, settings, records)}, nil
}

// runSettings returns the thresholds followed by the count-time setting
func runSettings(md protocol.Metadata) ([]string, error) {
	thresholds, err := md.Thresholds()
	if err != nil {
		return nil, err
	}
	ctime, err := md.Get(protocol.FieldCountTime)
	if err != nil {
		return nil, err
	}
	return append(thresholds, ctime), nil
}

// sampleCursor tracks the last sample id written to a dependent frame
type sampleCursor struct {
	id  string
	set bool
}

// advance moves the cursor to id and reports whether it moved
func (c *sampleCursor) advance(id string) bool {
	if c.set && c.id == id {
		return false
	}
	c.id, c.set = id, true
	return true
}

// dependentBlocks folds records into data blocks, writing a sample id only
// when it differs from the previous record's
func dependentBlocks(records []report.Record) []string {
	var (
		cursor sampleCursor
		out    []string
	)
	for _, rec := range records {
		if cursor.advance(rec.SampleID()) {
			out = append(out, rec.SampleID())
		}
		out = append(out, rec.Counts()...)
	}
	return out
}

func buildDependent(prefix []string, date, clock string, settings []string, records []report.Record) Frame {
	fields := append([]string{}, prefix...)
	fields = append(fields, date, clock)
	fields = append(fields, settings...)
	fields = append(fields, dependentBlocks(records)...)
	return Frame{fields: fields}
}

// sampleGroup accumulates every measurement taken on one sample
type sampleGroup struct {
	sample string
	date   string
	clock  string
	blocks []string
}

func buildIndependent(prefix []string, settings []string, records []report.Record) []Frame {
	var groups []*sampleGroup
	bySample := make(map[string]*sampleGroup)

	for _, rec := range records {
		g, ok := bySample[rec.SampleID()]
		if !ok {
			g = &sampleGroup{sample: rec.SampleID()}
			bySample[g.sample] = g
			groups = append(groups, g)
		}
		// Last record of the group wins the timestamp
		g.date, g.clock = rec.Date(), rec.Time()
		g.blocks = append(g.blocks, rec.SampleID())
		g.blocks = append(g.blocks, rec.Counts()...)
	}

	frames := make([]Frame, 0, len(groups))
	for _, g := range groups {
		fields := append([]string{}, prefix...)
		fields = append(fields, g.date, g.clock)
		fields = append(fields, settings...)
		fields = append(fields, g.blocks...)
		frames = append(frames, Frame{SampleID: g.sample, fields: fields})
	}
	return frames
}
