// Package sweep is the periodic reconciliation job: it finalizes ABSENT and
// INCOMPLETE outcomes and propagates holiday tagging once a session's
// relevance window has closed. Every write is insert-if-absent or a
// status-guarded update, so a tick commutes with live student actions and
// re-running against unchanged state is a no-op.
package sweep

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/gmgenove/attendance-checker/ledger"
	"github.com/gmgenove/attendance-checker/models"
	"github.com/gmgenove/attendance-checker/schedule"
	"github.com/gmgenove/attendance-checker/semester"
)

const (
	dateLayout = "2006-01-02"

	// A session is only finalized once its scheduled end plus this grace
	// period has passed.
	DefaultGrace = 30 * time.Minute
)

type Sweep struct {
	db    *gorm.DB
	loc   *time.Location
	now   func() time.Time
	grace time.Duration
}

func New(db *gorm.DB, loc *time.Location) *Sweep {
	return &Sweep{db: db, loc: loc, now: time.Now, grace: DefaultGrace}
}

// WithClock pins "now" for a tick; tests drive RunOnce directly with it.
func (s *Sweep) WithClock(now func() time.Time) *Sweep {
	cp := *s
	cp.now = now
	return &cp
}

// Start registers the sweep on a 30-minute cron and starts it. Per-tick
// errors are logged, never fatal: the schedule must survive a bad tick.
func (s *Sweep) Start() *cron.Cron {
	c := cron.New(cron.WithLocation(s.loc), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc("*/30 * * * *", func() {
		if err := s.RunOnce(); err != nil {
			log.Printf("[sweep] tick failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("[sweep] cron registration failed: %v", err)
	}
	c.Start()
	log.Printf("[sweep] started, every 30m, grace=%s", s.grace)
	return c
}

// RunOnce reconciles "today" against one captured instant.
func (s *Sweep) RunOnce() error {
	now := s.now().In(s.loc)
	date := now.Format(dateLayout)
	weekday := now.Format("Mon")

	settings, err := semester.LoadSettings(s.db)
	if err != nil {
		return err
	}
	sem := semester.Resolve(now, settings)
	if sem == nil {
		log.Printf("[sweep] no active semester on %s, nothing to reconcile", date)
		return nil
	}

	classes, err := schedule.ClassesFor(s.db, date, weekday, sem)
	if err != nil {
		return err
	}
	if len(classes) == 0 {
		return nil
	}

	users, err := s.attendingUsers()
	if err != nil {
		return err
	}

	var holiday models.Holiday
	err = s.db.First(&holiday, "holiday_date = ?", date).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if err == nil {
		return s.tagHoliday(date, holiday, classes, users)
	}

	for _, cls := range classes {
		end, err := cls.EndOn(now, s.loc)
		if err != nil {
			log.Printf("[sweep] %s: bad end time %q: %v", cls.ClassCode, cls.EndTime, err)
			continue
		}
		if now.Before(end.Add(s.grace)) {
			continue // session still within its relevance window
		}
		if err := s.finalizeClass(date, cls.ClassCode, users); err != nil {
			return err
		}
	}
	return nil
}

// tagHoliday inserts HOLIDAY for every student lacking any row. Existing
// rows (an already-filed EXCUSED, an authorized make-up's PENDING) are
// left untouched.
func (s *Sweep) tagHoliday(date string, h models.Holiday, classes []models.ScheduleEntry, users []models.User) error {
	for _, cls := range classes {
		recs := make([]models.AttendanceRecord, 0, len(users))
		for _, u := range users {
			recs = append(recs, models.AttendanceRecord{
				ClassDate: date,
				ClassCode: cls.ClassCode,
				StudentID: u.UserID,
				Status:    models.StatusHoliday,
				Reason:    h.Name,
				Synthetic: true,
			})
		}
		n, err := ledger.CreateIfAbsent(s.db, recs)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("[sweep] %s %s: tagged %d HOLIDAY (%s)", date, cls.ClassCode, n, h.Name)
		}
	}
	return nil
}

// finalizeClass marks no-shows ABSENT and upgrades forgotten checkouts to
// INCOMPLETE.
func (s *Sweep) finalizeClass(date, classCode string, users []models.User) error {
	recs := make([]models.AttendanceRecord, 0, len(users))
	for _, u := range users {
		recs = append(recs, models.AttendanceRecord{
			ClassDate: date,
			ClassCode: classCode,
			StudentID: u.UserID,
			Status:    models.StatusAbsent,
		})
	}
	absents, err := ledger.CreateIfAbsent(s.db, recs)
	if err != nil {
		return err
	}

	res := s.db.Model(&models.AttendanceRecord{}).
		Where("class_date = ? AND class_code = ? AND time_out = ? AND status IN ?",
			date, classCode, "", []models.Status{models.StatusPresent, models.StatusLate}).
		Update("status", models.StatusIncomplete)
	if res.Error != nil {
		return res.Error
	}
	if absents > 0 || res.RowsAffected > 0 {
		log.Printf("[sweep] %s %s: %d ABSENT, %d INCOMPLETE", date, classCode, absents, res.RowsAffected)
	}
	return nil
}

func (s *Sweep) attendingUsers() ([]models.User, error) {
	var users []models.User
	err := s.db.Where("user_role IN ?", models.AttendingRoles).
		Order("user_id ASC").Find(&users).Error
	return users, err
}
