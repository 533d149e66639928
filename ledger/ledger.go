// Package ledger owns reads and writes of attendance rows. All writes are
// idempotent upserts keyed on the (date, class, student) composite primary
// key; that key is the only concurrency control in the system.
package ledger

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gmgenove/attendance-checker/models"
)

var conflictKey = []clause.Column{
	{Name: "class_date"}, {Name: "class_code"}, {Name: "student_id"},
}

// Get is a point lookup. found is false when the triple has no row
// (NOT_RECORDED).
func Get(db *gorm.DB, date, classCode, studentID string) (rec models.AttendanceRecord, found bool, err error) {
	err = db.First(&rec,
		"class_date = ? AND class_code = ? AND student_id = ?",
		date, classCode, studentID).Error
	if err == gorm.ErrRecordNotFound {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, err
	}
	return rec, true, nil
}

// Upsert inserts or overwrites the row for rec's key.
func Upsert(db *gorm.DB, rec *models.AttendanceRecord) error {
	return db.Clauses(clause.OnConflict{
		Columns: conflictKey,
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "time_in", "time_out", "reason", "synthetic", "updated_at",
		}),
	}).Create(rec).Error
}

// CreateIfAbsent inserts every record whose key has no row yet and reports
// how many landed. Existing rows are never touched, which is what lets the
// sweep and interactive writers commute.
func CreateIfAbsent(db *gorm.DB, recs []models.AttendanceRecord) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	res := db.Clauses(clause.OnConflict{Columns: conflictKey, DoNothing: true}).Create(&recs)
	return res.RowsAffected, res.Error
}

// ForDateClass returns every row for one class session, keyed by student.
func ForDateClass(db *gorm.DB, date, classCode string) (map[string]models.AttendanceRecord, error) {
	var rows []models.AttendanceRecord
	if err := db.Find(&rows, "class_date = ? AND class_code = ?", date, classCode).Error; err != nil {
		return nil, err
	}
	out := make(map[string]models.AttendanceRecord, len(rows))
	for _, r := range rows {
		out[r.StudentID] = r
	}
	return out, nil
}

// ForStudentClass returns a student's rows for one class across the given
// dates, keyed by date.
func ForStudentClass(db *gorm.DB, classCode, studentID string, dates []string) (map[string]models.AttendanceRecord, error) {
	if len(dates) == 0 {
		return map[string]models.AttendanceRecord{}, nil
	}
	var rows []models.AttendanceRecord
	err := db.Find(&rows,
		"class_code = ? AND student_id = ? AND class_date IN ?",
		classCode, studentID, dates).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.AttendanceRecord, len(rows))
	for _, r := range rows {
		out[r.ClassDate] = r
	}
	return out, nil
}

// DeleteSynthetic removes only the synthetic rows for one class session,
// reopening ordinary check-in. Real attendance events survive.
func DeleteSynthetic(db *gorm.DB, date, classCode string) (int64, error) {
	res := db.Where("class_date = ? AND class_code = ? AND synthetic = ?",
		date, classCode, true).
		Delete(&models.AttendanceRecord{})
	return res.RowsAffected, res.Error
}
