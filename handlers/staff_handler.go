package handlers

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gmgenove/attendance-checker/database"
	"github.com/gmgenove/attendance-checker/engine"
	"github.com/gmgenove/attendance-checker/ledger"
	"github.com/gmgenove/attendance-checker/models"
)

type StaffHandler struct {
	Eng *engine.Engine

	// Reference-list cache for the report dropdowns. Short TTL,
	// correctness-irrelevant.
	mu        sync.Mutex
	dropdowns map[string]any
	fetchedAt time.Time
}

const dropdownTTL = 60 * time.Second

func NewStaffHandler(eng *engine.Engine) *StaffHandler {
	return &StaffHandler{Eng: eng}
}

type overrideReq struct {
	ClassCode string `json:"class_code" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,oneof=SUSPENDED CANCELLED ASYNCHRONOUS NORMAL"`
	Reason    string `json:"reason"`
}

// POST /staff/override — class-wide declaration, or NORMAL to undo one.
func (h *StaffHandler) Override(c echo.Context) error {
	var req overrideReq
	if ok, err := bindReq(c, &req); !ok {
		return err
	}
	written, err := h.Eng.DeclareOverride(req.ClassCode, req.Date, models.Status(req.Status), req.Reason)
	if err != nil {
		return failJSON(c, err)
	}
	return okJSON(c, map[string]any{"written": written})
}

type makeupReq struct {
	ClassCode string `json:"class_code" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
}

// POST /staff/makeup
func (h *StaffHandler) Makeup(c echo.Context) error {
	var req makeupReq
	if ok, err := bindReq(c, &req); !ok {
		return err
	}
	created, err := h.Eng.AuthorizeMakeup(req.ClassCode, req.Date)
	if err != nil {
		return failJSON(c, err)
	}
	return okJSON(c, map[string]any{"created": created})
}

// GET /staff/dashboard?class=CODE — header counts plus the full roster with
// each student's current status for today's session.
func (h *StaffHandler) Dashboard(c echo.Context) error {
	classCode := c.QueryParam("class")
	if classCode == "" {
		return failJSON(c, &engine.ValidationError{Msg: "class query parameter is required"})
	}
	date := h.Eng.Now().Format("2006-01-02")

	var users []models.User
	if err := database.DB.Where("user_role IN ?", models.AttendingRoles).
		Order("user_name ASC").Find(&users).Error; err != nil {
		return failJSON(c, err)
	}
	recs, err := ledger.ForDateClass(database.DB, date, classCode)
	if err != nil {
		return failJSON(c, err)
	}

	stats := map[models.Status]int{}
	roster := make([]map[string]any, 0, len(users))
	for _, u := range users {
		status := models.StatusNotRecorded
		timeIn := ""
		if rec, ok := recs[u.UserID]; ok {
			status = rec.Status
			timeIn = rec.TimeIn
		}
		stats[status]++
		roster = append(roster, map[string]any{
			"user_id":   u.UserID,
			"user_name": u.UserName,
			"status":    status,
			"time_in":   timeIn,
		})
	}
	return okJSON(c, map[string]any{"date": date, "stats": stats, "roster": roster})
}

// GET /staff/summary?class=CODE — per-student lifecycle counts across the
// whole ledger for one class.
func (h *StaffHandler) Summary(c echo.Context) error {
	classCode := c.QueryParam("class")
	if classCode == "" {
		return failJSON(c, &engine.ValidationError{Msg: "class query parameter is required"})
	}

	var users []models.User
	if err := database.DB.Where("user_role IN ?", models.AttendingRoles).
		Order("user_name ASC").Find(&users).Error; err != nil {
		return failJSON(c, err)
	}
	var rows []models.AttendanceRecord
	if err := database.DB.Find(&rows, "class_code = ?", classCode).Error; err != nil {
		return failJSON(c, err)
	}

	counts := map[string]map[models.Status]int{}
	for _, r := range rows {
		if counts[r.StudentID] == nil {
			counts[r.StudentID] = map[models.Status]int{}
		}
		counts[r.StudentID][r.Status]++
	}

	summary := make([]map[string]any, 0, len(users))
	for _, u := range users {
		cnt := counts[u.UserID]
		summary = append(summary, map[string]any{
			"user_id":          u.UserID,
			"user_name":        u.UserName,
			"present_count":    cnt[models.StatusPresent],
			"late_count":       cnt[models.StatusLate],
			"absent_count":     cnt[models.StatusAbsent],
			"incomplete_count": cnt[models.StatusIncomplete],
			"excused_count":    cnt[models.StatusExcused],
		})
	}
	return okJSON(c, map[string]any{"summary": summary})
}

// GET /staff/dropdowns — class/student reference lists, cached briefly.
func (h *StaffHandler) Dropdowns(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dropdowns != nil && time.Since(h.fetchedAt) < dropdownTTL {
		return okJSON(c, h.dropdowns)
	}

	var classes []models.ScheduleEntry
	if err := database.DB.Order("class_code ASC").Find(&classes).Error; err != nil {
		return failJSON(c, err)
	}
	var students []models.User
	if err := database.DB.Where("user_role = ?", models.RoleStudent).
		Order("user_name ASC").Find(&students).Error; err != nil {
		return failJSON(c, err)
	}

	cls := make([]map[string]string, 0, len(classes))
	for _, e := range classes {
		cls = append(cls, map[string]string{"code": e.ClassCode, "name": e.ClassName})
	}
	std := make([]map[string]string, 0, len(students))
	for _, u := range students {
		std = append(std, map[string]string{"user_id": u.UserID, "user_name": u.UserName})
	}

	h.dropdowns = map[string]any{"classes": cls, "students": std}
	h.fetchedAt = time.Now()
	return okJSON(c, h.dropdowns)
}
