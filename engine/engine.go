// Package engine is the attendance status resolution core: every legal
// ledger transition, the order competing overrides take precedence, and the
// idempotence rules that let interactive writers and the reconciliation
// sweep interleave safely.
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/gmgenove/attendance-checker/ledger"
	"github.com/gmgenove/attendance-checker/models"
	"github.com/gmgenove/attendance-checker/schedule"
	"github.com/gmgenove/attendance-checker/semester"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

type Engine struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func New(db *gorm.DB, loc *time.Location) *Engine {
	return &Engine{db: db, loc: loc, now: time.Now}
}

// WithClock returns a copy using a fixed clock. Tests and the sweep pin
// "now" so every comparison inside one operation sees the same instant.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	cp := *e
	cp.now = now
	return &cp
}

// Now is the single civil-timezone instant an operation runs against.
func (e *Engine) Now() time.Time { return e.now().In(e.loc) }

// Windows are the check-in interval sizes, in minutes.
type Windows struct {
	CheckIn  int // opens this many minutes before start
	Late     int // LATE after this many minutes past start
	Absent   int // closed this many minutes past start
	CheckOut int // client hint only; not enforced server-side
}

func loadWindows(settings map[string]string) Windows {
	return Windows{
		CheckIn:  settingInt(settings, "checkin_window_minutes", 10),
		Late:     settingInt(settings, "late_window_minutes", 5),
		Absent:   settingInt(settings, "absent_window_minutes", 10),
		CheckOut: settingInt(settings, "checkout_window_minutes", 10),
	}
}

func settingInt(settings map[string]string, key string, def int) int {
	if v, err := strconv.Atoi(settings[key]); err == nil {
		return v
	}
	return def
}

// CheckInResult is what a student sees after checking in, whether this call
// performed the write or an earlier one did.
type CheckInResult struct {
	Status  models.Status `json:"status"`
	TimeIn  string        `json:"timestamp"`
	Already bool          `json:"already,omitempty"`
}

// CheckIn records a PRESENT or LATE row for (today, class, student).
// A repeat call, or the loser of a concurrent race, returns the persisted
// status as a success: "someone already recorded me" is not a failure.
func (e *Engine) CheckIn(classCode, studentID string) (*CheckInResult, error) {
	now := e.Now()
	date := now.Format(dateLayout)

	settings, err := semester.LoadSettings(e.db)
	if err != nil {
		return nil, err
	}
	if semester.Resolve(now, settings) == nil {
		return nil, &ConfigError{Msg: "No active semester found for today's date."}
	}

	rec, found, err := ledger.Get(e.db, date, classCode, studentID)
	if err != nil {
		return nil, err
	}
	// A PENDING make-up pre-authorization is superseded the instant the
	// student actually checks in; anything else is an idempotent no-op.
	if found && rec.Status != models.StatusPending {
		return &CheckInResult{Status: rec.Status, TimeIn: rec.TimeIn, Already: true}, nil
	}

	sched, err := schedule.ByCode(e.db, classCode)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &ValidationError{Msg: "Class not found"}
		}
		return nil, err
	}
	start, err := sched.StartOn(now, e.loc)
	if err != nil {
		return nil, err
	}

	w := loadWindows(settings)
	diff := now.Sub(start).Minutes()
	if diff < -float64(w.CheckIn) {
		return nil, &WindowClosedError{Msg: "Check-in not open yet"}
	}
	if diff > float64(w.Absent) {
		return nil, &WindowClosedError{Msg: "Check-in closed (Absent)"}
	}
	status := models.StatusPresent
	if diff > float64(w.Late) {
		status = models.StatusLate
	}

	timeIn := now.Format(timeLayout)
	if found {
		// Supersede the PENDING row, but only while it is still PENDING.
		res := e.db.Model(&models.AttendanceRecord{}).
			Where("class_date = ? AND class_code = ? AND student_id = ? AND status = ?",
				date, classCode, studentID, models.StatusPending).
			Updates(map[string]any{"status": status, "time_in": timeIn, "synthetic": false})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return e.readBack(date, classCode, studentID)
		}
		return &CheckInResult{Status: status, TimeIn: timeIn}, nil
	}

	inserted, err := ledger.CreateIfAbsent(e.db, []models.AttendanceRecord{{
		ClassDate: date,
		ClassCode: classCode,
		StudentID: studentID,
		Status:    status,
		TimeIn:    timeIn,
	}})
	if err != nil {
		return nil, err
	}
	if inserted == 0 {
		// Lost the race; surface the winner's persisted status.
		return e.readBack(date, classCode, studentID)
	}
	return &CheckInResult{Status: status, TimeIn: timeIn}, nil
}

func (e *Engine) readBack(date, classCode, studentID string) (*CheckInResult, error) {
	rec, found, err := ledger.Get(e.db, date, classCode, studentID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("attendance row for %s/%s/%s vanished", date, classCode, studentID)
	}
	return &CheckInResult{Status: rec.Status, TimeIn: rec.TimeIn, Already: true}, nil
}

// CheckOut stamps time-out on today's row. Time-out is only legal on a real
// attendance event still in PRESENT or LATE.
func (e *Engine) CheckOut(classCode, studentID string) (string, error) {
	now := e.Now()
	date := now.Format(dateLayout)

	rec, found, err := ledger.Get(e.db, date, classCode, studentID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", &StateError{Msg: "You must check in before checking out."}
	}
	switch rec.Status {
	case models.StatusExcused:
		return "", &StateError{Msg: "Cannot check out while excused."}
	case models.StatusPresent, models.StatusLate:
	default:
		return "", &StateError{Msg: fmt.Sprintf("Cannot check out with status %s.", rec.Status)}
	}

	timeOut := now.Format(timeLayout)
	res := e.db.Model(&models.AttendanceRecord{}).
		Where("class_date = ? AND class_code = ? AND student_id = ? AND status IN ?",
			date, classCode, studentID, []models.Status{models.StatusPresent, models.StatusLate}).
		Update("time_out", timeOut)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		// The row changed under us (e.g. excuse filed between read and
		// write); re-evaluate rather than stamping a foreign status.
		return e.CheckOut(classCode, studentID)
	}
	return timeOut, nil
}

// GetToday returns the student's current record for a class, or a virtual
// NOT_RECORDED when no row exists.
func (e *Engine) GetToday(classCode, studentID string) (models.AttendanceRecord, error) {
	date := e.Now().Format(dateLayout)
	rec, found, err := ledger.Get(e.db, date, classCode, studentID)
	if err != nil {
		return rec, err
	}
	if !found {
		rec = models.AttendanceRecord{
			ClassDate: date,
			ClassCode: classCode,
			StudentID: studentID,
			Status:    models.StatusNotRecorded,
		}
	}
	return rec, nil
}

// FileExcuse records an EXCUSED row with the given justification. One excuse
// per session: any existing row for the key is a conflict.
func (e *Engine) FileExcuse(classCode, studentID, reason string) error {
	now := e.Now()
	date := now.Format(dateLayout)

	reason = strings.TrimSpace(reason)
	if len(reason) < 5 {
		return &ValidationError{Msg: "Please provide a valid reason (min 5 characters)."}
	}

	_, found, err := ledger.Get(e.db, date, classCode, studentID)
	if err != nil {
		return err
	}
	if found {
		return &ConflictError{Msg: "An attendance record already exists for this session."}
	}

	inserted, err := ledger.CreateIfAbsent(e.db, []models.AttendanceRecord{{
		ClassDate: date,
		ClassCode: classCode,
		StudentID: studentID,
		Status:    models.StatusExcused,
		TimeIn:    now.Format(timeLayout), // filing timestamp, a real event
		Reason:    reason,
	}})
	if err != nil {
		return err
	}
	if inserted == 0 {
		return &ConflictError{Msg: "An attendance record already exists for this session."}
	}
	return nil
}

// TodaySchedule lists the classes meeting today, make-up sessions included.
func (e *Engine) TodaySchedule() ([]models.ScheduleEntry, error) {
	now := e.Now()
	settings, err := semester.LoadSettings(e.db)
	if err != nil {
		return nil, err
	}
	sem := semester.Resolve(now, settings)
	return schedule.ClassesFor(e.db, now.Format(dateLayout), now.Format("Mon"), sem)
}

func activeStudents(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Where("user_role IN ?", models.AttendingRoles).
		Order("user_id ASC").Find(&users).Error
	return users, err
}
