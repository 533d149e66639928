package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gmgenove/attendance-checker/database"
	"github.com/gmgenove/attendance-checker/ledger"
	"github.com/gmgenove/attendance-checker/models"
)

var pht = time.FixedZone("PHT", 8*60*60)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// seedBase: first semester 2025-09-01..2026-01-17, 10/5/10 windows, one
// Mon/Wed class starting 09:00, three attending users and a professor.
func seedBase(t *testing.T, db *gorm.DB) {
	t.Helper()
	settings := []models.Setting{
		{Key: "sem1_start", Value: "2025-09-01"},
		{Key: "sem1_end", Value: "2026-01-17"},
		{Key: "sem1_adjustment_end", Value: "2025-11-30"},
		{Key: "checkin_window_minutes", Value: "10"},
		{Key: "late_window_minutes", Value: "5"},
		{Key: "absent_window_minutes", Value: "10"},
	}
	require.NoError(t, db.Create(&settings).Error)

	require.NoError(t, db.Create(&models.ScheduleEntry{
		ClassCode: "MATH101", ClassName: "College Algebra",
		Days: "Mon,Wed", StartTime: "09:00", EndTime: "10:30",
		Semester: "1", AcademicYear: "2025-2026", ProfessorID: "P1",
	}).Error)

	users := []models.User{
		{UserID: "S1", UserName: "Ana Reyes", UserRole: models.RoleStudent},
		{UserID: "S2", UserName: "Ben Santos", UserRole: models.RoleStudent},
		{UserID: "O1", UserName: "Carla Uy", UserRole: models.RoleOfficer},
		{UserID: "P1", UserName: "Prof. Dizon", UserRole: models.RoleProfessor},
	}
	require.NoError(t, db.Create(&users).Error)
}

// engAt pins the engine clock to a civil timestamp, e.g. "2025-10-06 09:05:00".
func engAt(t *testing.T, db *gorm.DB, ts string) *Engine {
	t.Helper()
	fixed, err := time.ParseInLocation("2006-01-02 15:04:05", ts, pht)
	require.NoError(t, err)
	return New(db, pht).WithClock(func() time.Time { return fixed })
}

func TestCheckInWindows(t *testing.T) {
	// checkinWindow=10, lateWindow=5, absentWindow=10, start 09:00.
	cases := []struct {
		at      string
		status  models.Status
		wantErr string
	}{
		{at: "08:52:00", status: models.StatusPresent},
		{at: "09:10:00", status: models.StatusLate},
		{at: "09:15:00", wantErr: "Check-in closed (Absent)"},
		{at: "08:45:00", wantErr: "Check-in not open yet"},
	}
	for _, tc := range cases {
		t.Run(tc.at, func(t *testing.T) {
			db := testDB(t)
			seedBase(t, db)
			eng := engAt(t, db, "2025-10-06 "+tc.at)

			res, err := eng.CheckIn("MATH101", "S1")
			if tc.wantErr != "" {
				require.Error(t, err)
				var we *WindowClosedError
				require.ErrorAs(t, err, &we)
				require.Equal(t, tc.wantErr, we.Msg)
				_, found, gerr := ledger.Get(db, "2025-10-06", "MATH101", "S1")
				require.NoError(t, gerr)
				require.False(t, found, "rejected check-in must write nothing")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.status, res.Status)
		})
	}
}

func TestCheckInIdempotent(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	eng := engAt(t, db, "2025-10-06 09:02:00")

	first, err := eng.CheckIn("MATH101", "S1")
	require.NoError(t, err)
	require.Equal(t, models.StatusPresent, first.Status)
	require.False(t, first.Already)

	// Later repeat, even one that would have been LATE, returns the
	// persisted outcome and leaves exactly one row.
	again, err := engAt(t, db, "2025-10-06 09:08:00").CheckIn("MATH101", "S1")
	require.NoError(t, err)
	require.Equal(t, models.StatusPresent, again.Status)
	require.True(t, again.Already)
	require.Equal(t, first.TimeIn, again.TimeIn)

	var count int64
	require.NoError(t, db.Model(&models.AttendanceRecord{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCheckInNoActiveSemester(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	eng := engAt(t, db, "2026-01-26 09:00:00") // between semesters

	_, err := eng.CheckIn("MATH101", "S1")
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestCheckInUnknownClass(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	_, err := engAt(t, db, "2025-10-06 09:00:00").CheckIn("NOPE999", "S1")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestCheckInSupersedesPendingMakeup(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	require.NoError(t, db.Create(&models.AttendanceRecord{
		ClassDate: "2025-10-06", ClassCode: "MATH101", StudentID: "S1",
		Status: models.StatusPending, Synthetic: true,
	}).Error)

	res, err := engAt(t, db, "2025-10-06 09:02:00").CheckIn("MATH101", "S1")
	require.NoError(t, err)
	require.Equal(t, models.StatusPresent, res.Status)

	rec, _, err := ledger.Get(db, "2025-10-06", "MATH101", "S1")
	require.NoError(t, err)
	require.Equal(t, models.StatusPresent, rec.Status)
	require.False(t, rec.Synthetic)
	require.NotEmpty(t, rec.TimeIn)
}

func TestCheckInDoesNotDisturbClassWideOverride(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	eng := engAt(t, db, "2025-10-06 09:02:00")

	_, err := eng.DeclareOverride("MATH101", "2025-10-06", models.StatusSuspended, "typhoon signal #3")
	require.NoError(t, err)

	res, err := eng.CheckIn("MATH101", "S1")
	require.NoError(t, err)
	require.Equal(t, models.StatusSuspended, res.Status)
	require.True(t, res.Already)

	rec, _, err := ledger.Get(db, "2025-10-06", "MATH101", "S1")
	require.NoError(t, err)
	require.Equal(t, models.StatusSuspended, rec.Status)
}

func TestCheckOutHappyPath(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	_, err := engAt(t, db, "2025-10-06 09:02:00").CheckIn("MATH101", "S1")
	require.NoError(t, err)

	timeOut, err := engAt(t, db, "2025-10-06 10:25:00").CheckOut("MATH101", "S1")
	require.NoError(t, err)
	require.Equal(t, "10:25:00", timeOut)

	rec, _, err := ledger.Get(db, "2025-10-06", "MATH101", "S1")
	require.NoError(t, err)
	require.Equal(t, models.StatusPresent, rec.Status)
	require.Equal(t, "10:25:00", rec.TimeOut)
}

func TestCheckOutRequiresCheckIn(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	_, err := engAt(t, db, "2025-10-06 10:25:00").CheckOut("MATH101", "S1")
	var se *StateError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "You must check in before checking out.", se.Msg)
}

func TestCheckOutBlockedWhileExcused(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	eng := engAt(t, db, "2025-10-06 08:00:00")
	require.NoError(t, eng.FileExcuse("MATH101", "S1", "fever, doctor visit"))

	_, err := engAt(t, db, "2025-10-06 10:25:00").CheckOut("MATH101", "S1")
	var se *StateError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "Cannot check out while excused.", se.Msg)
}

func TestFileExcuseValidatesReason(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	err := engAt(t, db, "2025-10-06 08:00:00").FileExcuse("MATH101", "S1", "sick")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestFileExcuseOncePerSession(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	eng := engAt(t, db, "2025-10-06 08:00:00")

	require.NoError(t, eng.FileExcuse("MATH101", "S1", "barangay clearance errand"))

	err := eng.FileExcuse("MATH101", "S1", "second excuse, same day")
	var fe *ConflictError
	require.ErrorAs(t, err, &fe)

	rec, _, err := ledger.Get(db, "2025-10-06", "MATH101", "S1")
	require.NoError(t, err)
	require.Equal(t, models.StatusExcused, rec.Status)
	require.Equal(t, "barangay clearance errand", rec.Reason)
	require.Equal(t, "08:00:00", rec.TimeIn)
}

func TestGetTodayVirtualNotRecorded(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	rec, err := engAt(t, db, "2025-10-06 08:00:00").GetToday("MATH101", "S1")
	require.NoError(t, err)
	require.Equal(t, models.StatusNotRecorded, rec.Status)
}
