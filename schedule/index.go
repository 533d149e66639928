// Package schedule answers "which classes meet on this date?". The answer is
// the nominal timetable filtered by weekday, semester, and cycle window,
// unioned with any class holding an authorized make-up (a PENDING ledger row)
// for that exact date. The sweep and the student-facing listing both go
// through this one function so make-up sessions can't vanish from either.
package schedule

import (
	"gorm.io/gorm"

	"github.com/gmgenove/attendance-checker/models"
	"github.com/gmgenove/attendance-checker/semester"
)

// ClassesFor resolves the set of class sessions meeting on date.
// weekday is the short day name ("Mon".."Sun"); sem may be nil, in which case
// only make-up sessions can match.
func ClassesFor(db *gorm.DB, date, weekday string, sem *semester.Info) ([]models.ScheduleEntry, error) {
	var all []models.ScheduleEntry
	tx := db.Model(&models.ScheduleEntry{})
	if sem != nil {
		tx = tx.Where("semester = ? AND academic_year = ?", sem.ID, sem.AcademicYear)
	} else {
		tx = tx.Where("1 = 0")
	}
	if err := tx.Find(&all).Error; err != nil {
		return nil, err
	}

	out := make([]models.ScheduleEntry, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, e := range all {
		if e.MeetsOn(weekday, date) {
			out = append(out, e)
			seen[e.ClassCode] = true
		}
	}

	// Union: an authorized make-up meets even on an otherwise non-scheduled
	// day.
	var codes []string
	err := db.Model(&models.AttendanceRecord{}).
		Distinct("class_code").
		Where("class_date = ? AND status = ?", date, models.StatusPending).
		Pluck("class_code", &codes).Error
	if err != nil {
		return nil, err
	}
	for _, code := range codes {
		if seen[code] {
			continue
		}
		var e models.ScheduleEntry
		if err := db.First(&e, "class_code = ?", code).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return nil, err
		}
		out = append(out, e)
		seen[code] = true
	}
	return out, nil
}

// ByCode fetches a single schedule entry.
func ByCode(db *gorm.DB, classCode string) (*models.ScheduleEntry, error) {
	var e models.ScheduleEntry
	if err := db.First(&e, "class_code = ?", classCode).Error; err != nil {
		return nil, err
	}
	return &e, nil
}
