package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/gmgenove/attendance-checker/database"
	"github.com/gmgenove/attendance-checker/engine"
	"github.com/gmgenove/attendance-checker/models"
	"github.com/gmgenove/attendance-checker/semester"
)

type ConfigHandler struct {
	Eng       *engine.Engine
	startedAt time.Time
}

func NewConfigHandler(eng *engine.Engine) *ConfigHandler {
	return &ConfigHandler{Eng: eng, startedAt: time.Now()}
}

// GET /ping — kept dead simple for uptime monitors.
func (h *ConfigHandler) Ping(c echo.Context) error {
	return c.String(200, "System Awake")
}

// GET /health — DB round-trip included.
func (h *ConfigHandler) Health(c echo.Context) error {
	var one int
	if err := database.DB.Raw("SELECT 1").Scan(&one).Error; err != nil {
		return c.JSON(500, map[string]any{"ok": false, "status": "Database Connection Error", "error": err.Error()})
	}
	return okJSON(c, map[string]any{
		"status": "Healthy",
		"uptime": fmt.Sprintf("%.2f seconds", time.Since(h.startedAt).Seconds()),
	})
}

// GET /config — window sizes and the active semester's adjustment cutoff.
func (h *ConfigHandler) GetConfig(c echo.Context) error {
	now := h.Eng.Now()
	settings, err := semester.LoadSettings(database.DB)
	if err != nil {
		return failJSON(c, err)
	}

	cfg := map[string]any{
		"checkin_window_minutes":  settingInt(settings, "checkin_window_minutes", 10),
		"late_window_minutes":     settingInt(settings, "late_window_minutes", 5),
		"absent_window_minutes":   settingInt(settings, "absent_window_minutes", 10),
		"checkout_window_minutes": settingInt(settings, "checkout_window_minutes", 10),
		"adjustment_end":          "2099-12-31",
		"current_sem":             "None",
	}
	if sem := semester.Resolve(now, settings); sem != nil {
		cfg["current_sem"] = sem.ID
		cfg["semester_label"] = sem.Label
		cfg["academic_year"] = sem.AcademicYear
		if !sem.AdjustmentEnd.IsZero() {
			cfg["adjustment_end"] = sem.AdjustmentEnd.Format("2006-01-02")
		}
	}
	return okJSON(c, map[string]any{"config": cfg})
}

// GET /holiday/today
func (h *ConfigHandler) HolidayToday(c echo.Context) error {
	date := h.Eng.Now().Format("2006-01-02")
	var holiday models.Holiday
	err := database.DB.First(&holiday, "holiday_date = ?", date).Error
	if err == gorm.ErrRecordNotFound {
		return okJSON(c, map[string]any{"isHoliday": false})
	}
	if err != nil {
		return failJSON(c, err)
	}
	return okJSON(c, map[string]any{
		"isHoliday":   true,
		"holidayName": holiday.Name,
		"holidayType": holiday.Type,
	})
}

func settingInt(settings map[string]string, key string, def int) int {
	if v, err := strconv.Atoi(settings[key]); err == nil {
		return v
	}
	return def
}
