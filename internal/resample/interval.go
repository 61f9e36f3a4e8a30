// Package resample aggregates a clean series onto a coarser bar interval.
package resample

import (
	"fmt"
	"strings"
	"time"
)

// Interval is a target bar width.
type Interval struct {
	Name     string
	Duration time.Duration
}

var (
	Minute1  = Interval{Name: "1m", Duration: time.Minute}
	Minute5  = Interval{Name: "5m", Duration: 5 * time.Minute}
	Minute15 = Interval{Name: "15m", Duration: 15 * time.Minute}
	Minute30 = Interval{Name: "30m", Duration: 30 * time.Minute}
	Hour1    = Interval{Name: "1h", Duration: time.Hour}
	Hour4    = Interval{Name: "4h", Duration: 4 * time.Hour}
	Day1     = Interval{Name: "1d", Duration: 24 * time.Hour}
	Week1    = Interval{Name: "1w", Duration: 7 * 24 * time.Hour}
)

// Intervals lists every supported interval, finest first.
var Intervals = []Interval{Minute1, Minute5, Minute15, Minute30, Hour1, Hour4, Day1, Week1}

var registry = make(map[string]Interval)

func init() {
	for _, iv := range Intervals {
		registry[iv.Name] = iv
	}
	// common spellings
	registry["1min"] = Minute1
	registry["60m"] = Hour1
	registry["1day"] = Day1
	registry["1wk"] = Week1
}

// Parse returns the interval with the given name.
func Parse(name string) (Interval, error) {
	iv, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Interval{}, fmt.Errorf("unsupported interval: %s", name)
	}
	return iv, nil
}

// Names returns the canonical interval names.
func Names() []string {
	names := make([]string, len(Intervals))
	for i, iv := range Intervals {
		names[i] = iv.Name
	}
	return names
}

// BucketStart returns the start of the bucket containing t. Buckets follow the
// wall clock of t's location: sub-daily grids restart at local midnight, daily
// buckets are calendar days and weeks start on Monday.
func (iv Interval) BucketStart(t time.Time) time.Time {
	switch iv.Name {
	case Day1.Name:
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	case Week1.Name:
		y, m, d := t.Date()
		offset := (int(t.Weekday()) + 6) % 7 // days since Monday
		return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
	default:
		if iv.Duration <= 0 {
			return t
		}
		y, m, d := t.Date()
		h, mi, sec := t.Clock()
		wall := time.Duration(h)*time.Hour + time.Duration(mi)*time.Minute +
			time.Duration(sec)*time.Second + time.Duration(t.Nanosecond())
		return time.Date(y, m, d, 0, 0, 0, int(wall/iv.Duration*iv.Duration), t.Location())
	}
}
