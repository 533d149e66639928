package engine

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/gmgenove/attendance-checker/ledger"
	"github.com/gmgenove/attendance-checker/models"
	"github.com/gmgenove/attendance-checker/schedule"
	"github.com/gmgenove/attendance-checker/semester"
)

// DeclareOverride applies a class-wide SUSPENDED/CANCELLED/ASYNCHRONOUS
// declaration for one session, writing a synthetic row for every active
// student whose existing row doesn't outrank it. StatusNormal undoes a
// declaration by deleting only the synthetic rows, reopening check-in.
// Returns the number of rows written (or deleted, for NORMAL).
func (e *Engine) DeclareOverride(classCode, date string, status models.Status, reason string) (int64, error) {
	if status == models.StatusNormal {
		return ledger.DeleteSynthetic(e.db, date, classCode)
	}
	switch status {
	case models.StatusSuspended, models.StatusCancelled, models.StatusAsynchronous:
	default:
		return 0, &ValidationError{Msg: fmt.Sprintf("%s is not a class-wide override status.", status)}
	}

	users, err := activeStudents(e.db)
	if err != nil {
		return 0, err
	}
	existing, err := ledger.ForDateClass(e.db, date, classCode)
	if err != nil {
		return 0, err
	}

	var written int64
	var fresh []models.AttendanceRecord
	for _, u := range users {
		prev, ok := existing[u.UserID]
		if !ok {
			fresh = append(fresh, models.AttendanceRecord{
				ClassDate: date,
				ClassCode: classCode,
				StudentID: u.UserID,
				Status:    status,
				Reason:    reason,
				Synthetic: true,
			})
			continue
		}
		if prev.Status.Rank() > status.Rank() {
			continue // never clobber a higher-precedence row
		}
		n, err := e.guardedOverwrite(date, classCode, u.UserID, prev.Status, status, reason)
		if err != nil {
			return written, err
		}
		written += n
	}

	n, err := ledger.CreateIfAbsent(e.db, fresh)
	written += n
	return written, err
}

// guardedOverwrite replaces a row only while it still holds the status the
// precedence decision was made against, so a concurrent higher-precedence
// writer can't be silently undone.
func (e *Engine) guardedOverwrite(date, classCode, studentID string, prev, next models.Status, reason string) (int64, error) {
	res := e.db.Model(&models.AttendanceRecord{}).
		Where("class_date = ? AND class_code = ? AND student_id = ? AND status = ?",
			date, classCode, studentID, prev).
		Updates(map[string]any{
			"status":    next,
			"reason":    reason,
			"time_in":   "",
			"time_out":  "",
			"synthetic": true,
		})
	return res.RowsAffected, res.Error
}

// AuthorizeMakeup pre-authorizes a make-up session: a PENDING row for every
// active student who has no row yet for that date. Insert-if-absent only;
// it never overwrites. The class's professor must be free that date.
func (e *Engine) AuthorizeMakeup(classCode, date string) (int64, error) {
	sched, err := schedule.ByCode(e.db, classCode)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, &ValidationError{Msg: "Class not found"}
		}
		return 0, err
	}

	// Double-booking guard: schedule's professor assignment joined against
	// the ledger for that exact date.
	var booked int64
	err = e.db.Model(&models.AttendanceRecord{}).
		Joins("JOIN schedule_entries ON schedule_entries.class_code = attendance_records.class_code").
		Where("attendance_records.class_date = ? AND schedule_entries.professor_id = ? AND attendance_records.class_code <> ?",
			date, sched.ProfessorID, classCode).
		Count(&booked).Error
	if err != nil {
		return 0, err
	}
	if booked > 0 {
		return 0, &ConflictError{Msg: "Professor already has a session recorded on that date."}
	}

	users, err := activeStudents(e.db)
	if err != nil {
		return 0, err
	}
	recs := make([]models.AttendanceRecord, 0, len(users))
	for _, u := range users {
		recs = append(recs, models.AttendanceRecord{
			ClassDate: date,
			ClassCode: classCode,
			StudentID: u.UserID,
			Status:    models.StatusPending,
			Synthetic: true,
		})
	}
	return ledger.CreateIfAbsent(e.db, recs)
}

// CreditDropResult reports which remaining session dates a credit/drop
// touched.
type CreditDropResult struct {
	Dates   []string `json:"dates"`
	Written int64    `json:"written"`
}

// CreditDrop marks every remaining scheduled occurrence of the class, from
// today through semester end, CREDITED or DROPPED for one student. Past
// dates are never touched, and no write clobbers a higher-precedence row.
func (e *Engine) CreditDrop(classCode, studentID string, kind models.Status) (*CreditDropResult, error) {
	if kind != models.StatusCredited && kind != models.StatusDropped {
		return nil, &ValidationError{Msg: fmt.Sprintf("%s is not an adjustment status.", kind)}
	}

	now := e.Now()
	settings, err := semester.LoadSettings(e.db)
	if err != nil {
		return nil, err
	}
	sem := semester.Resolve(now, settings)
	if sem == nil {
		return nil, &ConfigError{Msg: "No active semester found for today's date."}
	}
	if kind == models.StatusCredited && !sem.AdjustmentEnd.IsZero() &&
		now.Format(dateLayout) > sem.AdjustmentEnd.Format(dateLayout) {
		return nil, &ConfigError{Msg: fmt.Sprintf("Adjustment period for Sem %s has ended.", sem.ID)}
	}

	sched, err := schedule.ByCode(e.db, classCode)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &ValidationError{Msg: "Class not found"}
		}
		return nil, err
	}

	// Civil-date comparison: the semester's final day still counts even
	// when "now" is past its midnight.
	var dates []string
	endDate := sem.End.Format(dateLayout)
	for d := now; d.Format(dateLayout) <= endDate; d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)
		if sched.MeetsOn(d.Format("Mon"), date) {
			dates = append(dates, date)
		}
	}

	existing, err := ledger.ForStudentClass(e.db, classCode, studentID, dates)
	if err != nil {
		return nil, err
	}

	out := &CreditDropResult{Dates: dates}
	var fresh []models.AttendanceRecord
	for _, date := range dates {
		prev, ok := existing[date]
		if !ok {
			fresh = append(fresh, models.AttendanceRecord{
				ClassDate: date,
				ClassCode: classCode,
				StudentID: studentID,
				Status:    kind,
				Synthetic: true,
			})
			continue
		}
		if prev.Status.Rank() > kind.Rank() {
			continue
		}
		n, err := e.guardedOverwrite(date, classCode, studentID, prev.Status, kind, "")
		if err != nil {
			return out, err
		}
		out.Written += n
	}
	n, err := ledger.CreateIfAbsent(e.db, fresh)
	out.Written += n
	return out, err
}
