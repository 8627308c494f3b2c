package frame

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/mslinn/tricarb_transcoder/pkg/report"
)

const headerFields = 11 // prefix, date, time, six thresholds, count time

// recordsFor builds one record per sample id; counts derive from seed so
// that two seeds give the same layout with different values
func recordsFor(t *testing.T, samples []int, seed int) []report.Record {
	records := make([]report.Record, len(samples))
	for i, s := range samples {
		v := fmt.Sprint(seed + i)
		clock := fmt.Sprintf("%02d%02d", (i/60)%24, i%60)
		records[i] = record(t, fmt.Sprint(s), clock, v, v, v, v)
	}
	return records
}

// runs counts maximal stretches of equal adjacent ids
func runs(samples []int) int {
	n := 0
	for i := range samples {
		if i == 0 || samples[i] != samples[i-1] {
			n++
		}
	}
	return n
}

// Property: a dependent frame writes one sample id per run of identical ids
// followed by four values per record.
func TestProperty_DependentRunLength(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("data block length is runs + 4*records", prop.ForAll(
		func(samples []int) bool {
			frames, err := Build("1", testMetadata("RUN.lsa"), recordsFor(t, samples, 100))
			if err != nil || len(frames) != 1 {
				return false
			}
			return frames[0].Len() == headerFields+runs(samples)+4*len(samples)
		},
		gen.SliceOf(gen.IntRange(1, 4)),
	))

	properties.Property("holding order fixed, changing values keeps id positions", prop.ForAll(
		func(samples []int, seedA, seedB int) bool {
			a, errA := Build("1", testMetadata("RUN.lsa"), recordsFor(t, samples, seedA))
			b, errB := Build("1", testMetadata("RUN.lsa"), recordsFor(t, samples, seedB))
			if errA != nil || errB != nil {
				return false
			}
			fa, fb := a[0].Fields(), b[0].Fields()
			if len(fa) != len(fb) {
				return false
			}

			// Walk the data blocks and compare the emitted ids
			pos := headerFields
			for i, s := range samples {
				if i == 0 || samples[i-1] != s {
					if fa[pos] != fmt.Sprint(s) || fb[pos] != fa[pos] {
						return false
					}
					pos++
				}
				pos += 4
			}
			return pos == len(fa)
		},
		gen.SliceOf(gen.IntRange(1, 3)),
		gen.IntRange(0, 1000),
		gen.IntRange(1000, 2000),
	))

	properties.TestingRun(t)
}

// Property: each independent frame carries one block per record of its
// sample and the timestamp of the last of them.
func TestProperty_IndependentGroups(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("blocks and timestamp per group", prop.ForAll(
		func(samples []int) bool {
			records := recordsFor(t, samples, 0)
			frames, err := Build("1", testMetadata("RUN_inde.lsa"), records)
			if err != nil {
				return false
			}

			counts := make(map[string]int)
			last := make(map[string]report.Record)
			var order []string
			for _, rec := range records {
				if counts[rec.SampleID()] == 0 {
					order = append(order, rec.SampleID())
				}
				counts[rec.SampleID()]++
				last[rec.SampleID()] = rec
			}

			if len(frames) != len(order) {
				return false
			}
			for i, f := range frames {
				id := order[i]
				if f.SampleID != id {
					return false
				}
				if f.Len() != headerFields+5*counts[id] {
					return false
				}
				if f.Field(FieldDate) != last[id].Date() || f.Field(FieldTime) != last[id].Time() {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 5)),
	))

	properties.TestingRun(t)
}
