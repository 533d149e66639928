package models

import (
	"strings"
	"time"
)

// ScheduleEntry is one class's standing meeting pattern. Immutable outside
// administrative edits.
type ScheduleEntry struct {
	ClassCode string `json:"class_code" gorm:"primaryKey;size:20"`
	ClassName string `json:"class_name" gorm:"size:120"`

	Days      string `json:"days" gorm:"size:40;not null"` // CSV of Mon,Tue,...
	StartTime string `json:"start_time" gorm:"size:5;not null"`
	EndTime   string `json:"end_time" gorm:"size:5;not null"`

	Semester     string `json:"semester" gorm:"size:4"`       // "1" / "2"
	AcademicYear string `json:"academic_year" gorm:"size:12"` // e.g. 2025-2026

	ProfessorID string `json:"professor_id" gorm:"size:20;index"`

	// Optional sub-range of the semester during which the entry is active
	// instead of the whole semester.
	CycleStart string `json:"cycle_start" gorm:"size:10"`
	CycleEnd   string `json:"cycle_end" gorm:"size:10"`
}

// DayList splits the CSV weekday set.
func (s ScheduleEntry) DayList() []string {
	parts := strings.Split(s.Days, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MeetsOn reports whether the entry nominally meets on the given weekday
// ("Mon".."Sun") and date (YYYY-MM-DD), honoring the cycle window.
func (s ScheduleEntry) MeetsOn(weekday, date string) bool {
	found := false
	for _, d := range s.DayList() {
		if strings.EqualFold(d, weekday) {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	if s.CycleStart != "" && date < s.CycleStart {
		return false
	}
	if s.CycleEnd != "" && date > s.CycleEnd {
		return false
	}
	return true
}

// StartOn anchors the entry's HH:MM start time onto a calendar day.
func (s ScheduleEntry) StartOn(day time.Time, loc *time.Location) (time.Time, error) {
	return anchorClock(s.StartTime, day, loc)
}

// EndOn anchors the entry's HH:MM end time onto a calendar day.
func (s ScheduleEntry) EndOn(day time.Time, loc *time.Location) (time.Time, error) {
	return anchorClock(s.EndTime, day, loc)
}

func anchorClock(hhmm string, day time.Time, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("15:04", hhmm, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
