package semester

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var pht = time.FixedZone("PHT", 8*60*60)

func fixture() map[string]string {
	return map[string]string{
		"sem1_start":          "2025-09-01",
		"sem1_end":            "2026-01-17",
		"sem1_adjustment_end": "2025-11-30",
		"sem2_start":          "2026-02-09",
		"sem2_end":            "2026-06-21",
		"sem2_adjustment_end": "2026-03-06",
	}
}

func TestResolveFirstSemester(t *testing.T) {
	now := time.Date(2025, 10, 6, 9, 0, 0, 0, pht)
	info := Resolve(now, fixture())
	require.NotNil(t, info)
	require.Equal(t, "1", info.ID)
	require.Equal(t, "First Semester", info.Label)
	require.Equal(t, "2025-2026", info.AcademicYear)
	require.Equal(t, "2025-11-30", info.AdjustmentEnd.Format("2006-01-02"))
}

func TestResolveSecondSemester(t *testing.T) {
	now := time.Date(2026, 3, 2, 14, 30, 0, 0, pht)
	info := Resolve(now, fixture())
	require.NotNil(t, info)
	require.Equal(t, "2", info.ID)
	require.Equal(t, "2025-2026", info.AcademicYear)
}

func TestResolveBoundaryDaysInclusive(t *testing.T) {
	cfg := fixture()
	first := Resolve(time.Date(2025, 9, 1, 0, 0, 1, 0, pht), cfg)
	require.NotNil(t, first)
	// The final day counts even late in the evening.
	last := Resolve(time.Date(2026, 1, 17, 23, 59, 0, 0, pht), cfg)
	require.NotNil(t, last)
	require.Equal(t, "1", last.ID)
}

func TestResolveNoActiveSemester(t *testing.T) {
	now := time.Date(2026, 1, 25, 9, 0, 0, 0, pht) // between semesters
	require.Nil(t, Resolve(now, fixture()))

	require.Nil(t, Resolve(now, map[string]string{})) // nothing configured
}

func TestAcademicYearRollover(t *testing.T) {
	require.Equal(t, "2025-2026", AcademicYear(time.Date(2025, 8, 1, 0, 0, 0, 0, pht)))
	require.Equal(t, "2025-2026", AcademicYear(time.Date(2026, 7, 31, 0, 0, 0, 0, pht)))
	require.Equal(t, "2024-2025", AcademicYear(time.Date(2025, 2, 14, 0, 0, 0, 0, pht)))
}
