// Package export writes ride analyses to text, parquet and JSON files.
package export

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"ridedash/internal/analysis"
	"ridedash/internal/service"
)

// Supported export formats
const (
	FormatText    = "txt"
	FormatParquet = "parquet"
	FormatJSON    = "json"
)

// Formats lists every supported format
var Formats = []string{FormatText, FormatParquet, FormatJSON}

// ErrUnknownFormat is returned for an unsupported format name
var ErrUnknownFormat = errors.New("unknown export format")

// Ride is everything an export needs. Metrics are written as given and
// never recomputed from the timeline.
type Ride struct {
	ID        int64
	Summary   analysis.ActivitySummary
	StartDate time.Time // local start time
	Metrics   analysis.RideMetrics
	Timeline  analysis.Timeline
}

// FromDetail builds an export from a ride detail
func FromDetail(d *service.RideDetail) Ride {
	r := Ride{
		Summary:   d.Summary,
		StartDate: d.Summary.StartDate,
		Metrics:   d.Metrics,
		Timeline:  d.Timeline,
	}
	if d.Ride != nil {
		r.ID = d.Ride.ID
		r.StartDate = d.Ride.StartDateLocal
	}
	return r
}

// ParseFormat validates a format name
func ParseFormat(name string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(name, "."))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Formats, ", "))
}

// Write writes the ride in the given format
func Write(w io.Writer, format string, r Ride) error {
	switch format {
	case FormatText:
		return WriteText(w, r)
	case FormatParquet:
		return WriteParquet(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\s-]`)

// Filename derives a download name from the ride name, replacing anything
// but word characters, spaces and dashes with underscores
func Filename(name, format string) string {
	if strings.TrimSpace(name) == "" {
		name = "ride"
	}
	return unsafeFilenameChars.ReplaceAllString(name, "_") + "." + format
}
