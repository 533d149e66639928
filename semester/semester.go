// Package semester resolves which configured semester, if any, contains a
// given instant. Resolution is pure: configured boundaries plus "now" in,
// Info or nil out. Every operation resolves once and reuses the result.
package semester

import (
	"fmt"
	"time"
)

// Info describes the active semester.
type Info struct {
	ID            string // "1" / "2"
	Label         string // "First Semester" / "Second Semester"
	AcademicYear  string // e.g. "2025-2026"
	Start         time.Time
	End           time.Time
	AdjustmentEnd time.Time // last date self-service CREDITED is permitted
}

// Contains reports whether the civil date of t falls inside [Start, End].
func (i *Info) Contains(t time.Time) bool {
	d := t.Format("2006-01-02")
	return d >= i.Start.Format("2006-01-02") && d <= i.End.Format("2006-01-02")
}

type bounds struct {
	id, label        string
	startKey, endKey string
	adjEndKey        string
}

var semesters = []bounds{
	{id: "1", label: "First Semester", startKey: "sem1_start", endKey: "sem1_end", adjEndKey: "sem1_adjustment_end"},
	{id: "2", label: "Second Semester", startKey: "sem2_start", endKey: "sem2_end", adjEndKey: "sem2_adjustment_end"},
}

// Resolve selects the semester whose [start, end] interval contains now.
// Returns nil when no interval matches ("no active semester").
func Resolve(now time.Time, settings map[string]string) *Info {
	for _, b := range semesters {
		start, err1 := parseDate(settings[b.startKey], now.Location())
		end, err2 := parseDate(settings[b.endKey], now.Location())
		if err1 != nil || err2 != nil {
			continue
		}
		info := &Info{
			ID:           b.id,
			Label:        b.label,
			AcademicYear: AcademicYear(now),
			Start:        start,
			End:          end,
		}
		if !info.Contains(now) {
			continue
		}
		if adj, err := parseDate(settings[b.adjEndKey], now.Location()); err == nil {
			info.AdjustmentEnd = adj
		}
		return info
	}
	return nil
}

// AcademicYear labels the school year for now, rolling over in August.
func AcademicYear(now time.Time) string {
	y := now.Year()
	if now.Month() >= time.August {
		return fmt.Sprintf("%d-%d", y, y+1)
	}
	return fmt.Sprintf("%d-%d", y-1, y)
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, loc)
}
