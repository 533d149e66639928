package sweep

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

// seedBase: first semester 2025-09-01..2026-01-17, one Mon/Wed class ending
// 10:30, two students and an officer on the roster.
func seedBase(t *testing.T, db *gorm.DB) {
	t.Helper()
	settings := []models.Setting{
		{Key: "sem1_start", Value: "2025-09-01"},
		{Key: "sem1_end", Value: "2026-01-17"},
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

func sweepAt(db *gorm.DB, ts string) *Sweep {
	fixed, _ := time.ParseInLocation("2006-01-02 15:04:05", ts, pht)
	return New(db, pht).WithClock(func() time.Time { return fixed })
}

func statusOf(t *testing.T, db *gorm.DB, date, class, student string) (models.Status, bool) {
	t.Helper()
	rec, found, err := ledger.Get(db, date, class, student)
	require.NoError(t, err)
	return rec.Status, found
}

func TestRunOnceFinalizesAbsencesAndIncompletes(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	// S1 checked in but never out.
	require.NoError(t, db.Create(&models.AttendanceRecord{
		ClassDate: "2025-10-06", ClassCode: "MATH101", StudentID: "S1",
		Status: models.StatusPresent, TimeIn: "09:05:00",
	}).Error)

	// 40 minutes past the 10:30 end, past the 30-minute grace.
	require.NoError(t, sweepAt(db, "2025-10-06 11:10:00").RunOnce())

	st, _ := statusOf(t, db, "2025-10-06", "MATH101", "S1")
	require.Equal(t, models.StatusIncomplete, st)

	for _, sid := range []string{"S2", "O1"} {
		st, found := statusOf(t, db, "2025-10-06", "MATH101", sid)
		require.True(t, found, sid)
		require.Equal(t, models.StatusAbsent, st, sid)
	}

	// Professors never get attendance rows.
	_, found := statusOf(t, db, "2025-10-06", "MATH101", "P1")
	require.False(t, found)

	// Finalized absences are real outcomes, not placeholders.
	rec, _, err := ledger.Get(db, "2025-10-06", "MATH101", "S2")
	require.NoError(t, err)
	require.False(t, rec.Synthetic)
}

func TestRunOnceWaitsOutGracePeriod(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)

	// End 10:30 plus 30m grace means 10:45 is still inside the window.
	require.NoError(t, sweepAt(db, "2025-10-06 10:45:00").RunOnce())

	var count int64
	require.NoError(t, db.Model(&models.AttendanceRecord{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRunOnceSkipsCompletedCheckouts(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	require.NoError(t, db.Create(&models.AttendanceRecord{
		ClassDate: "2025-10-06", ClassCode: "MATH101", StudentID: "S1",
		Status: models.StatusLate, TimeIn: "09:08:00", TimeOut: "10:25:00",
	}).Error)

	require.NoError(t, sweepAt(db, "2025-10-06 11:10:00").RunOnce())

	st, _ := statusOf(t, db, "2025-10-06", "MATH101", "S1")
	require.Equal(t, models.StatusLate, st)
}

func TestRunOnceTagsHolidayWithoutClobbering(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	require.NoError(t, db.Create(&models.Holiday{
		Date: "2025-10-06", Name: "Local Fiesta", Type: "special",
	}).Error)
	// S1 filed an excuse before the holiday was noticed.
	require.NoError(t, db.Create(&models.AttendanceRecord{
		ClassDate: "2025-10-06", ClassCode: "MATH101", StudentID: "S1",
		Status: models.StatusExcused, Reason: "medical appointment booked", TimeIn: "07:00:00",
	}).Error)

	// Holiday tagging does not wait for the session to end.
	require.NoError(t, sweepAt(db, "2025-10-06 09:30:00").RunOnce())

	st, _ := statusOf(t, db, "2025-10-06", "MATH101", "S1")
	require.Equal(t, models.StatusExcused, st)

	for _, sid := range []string{"S2", "O1"} {
		rec, found, err := ledger.Get(db, "2025-10-06", "MATH101", sid)
		require.NoError(t, err)
		require.True(t, found, sid)
		require.Equal(t, models.StatusHoliday, rec.Status, sid)
		require.Equal(t, "Local Fiesta", rec.Reason, sid)
		require.True(t, rec.Synthetic, sid)
	}
}

func TestRunOnceIdempotent(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)
	require.NoError(t, db.Create(&models.AttendanceRecord{
		ClassDate: "2025-10-06", ClassCode: "MATH101", StudentID: "S1",
		Status: models.StatusPresent, TimeIn: "09:05:00",
	}).Error)

	s := sweepAt(db, "2025-10-06 11:10:00")
	require.NoError(t, s.RunOnce())

	var snapshot []models.AttendanceRecord
	require.NoError(t, db.Order("student_id").Find(&snapshot).Error)

	require.NoError(t, s.RunOnce())

	var after []models.AttendanceRecord
	require.NoError(t, db.Order("student_id").Find(&after).Error)
	require.Len(t, after, len(snapshot))
	for i := range snapshot {
		require.Equal(t, snapshot[i].Status, after[i].Status)
		require.Equal(t, snapshot[i].TimeOut, after[i].TimeOut)
	}
}

func TestRunOnceNoActiveSemester(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)

	require.NoError(t, sweepAt(db, "2026-01-26 11:10:00").RunOnce())

	var count int64
	require.NoError(t, db.Model(&models.AttendanceRecord{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRunOnceOffDayWritesNothing(t *testing.T) {
	db := testDB(t)
	seedBase(t, db)

	// Tuesday; the class meets Mon/Wed.
	require.NoError(t, sweepAt(db, "2025-10-07 11:10:00").RunOnce())

	var count int64
	require.NoError(t, db.Model(&models.AttendanceRecord{}).Count(&count).Error)
	require.Zero(t, count)
}
