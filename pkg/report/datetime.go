package report

import (
	"fmt"
	"strings"
	"time"
)

// SourceLayouts are the accepted date/time forms, tried in order
var SourceLayouts = []string{
	"02/01/2006 15:04:05",
	"1/2/2006 03:04:05 PM",
	"01/02/2006 03:04:05 PM",
	"1/2/2006 3:4:05 PM",
	"01/02/2006 3:4:05 PM",
}

// Canonical output layouts
const (
	DateLayout = "02/01/2006"
	TimeLayout = "1504"
)

// CanonicalDateTime parses a report date and time and renders them as
// DD/MM/YYYY and HHMM
func CanonicalDateTime(date, clock string) (string, string, error) {
	value := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)
	for _, layout := range SourceLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.Format(DateLayout), t.Format(TimeLayout), nil
		}
	}
	return "", "", fmt.Errorf("no accepted layout matches %q", value)
}
