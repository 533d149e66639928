package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/gmgenove/attendance-checker/config"
	"github.com/gmgenove/attendance-checker/database"
	"github.com/gmgenove/attendance-checker/engine"
	"github.com/gmgenove/attendance-checker/handlers"
	"github.com/gmgenove/attendance-checker/middlewares"
	"github.com/gmgenove/attendance-checker/models"
)

// Register wires all HTTP routes.
func Register(e *echo.Echo, cfg *config.Config) {
	eng := engine.New(database.DB, cfg.Location())

	auth := handlers.NewAuthHandler(cfg.JWTSecret)
	att := handlers.NewAttendanceHandler(eng)
	staff := handlers.NewStaffHandler(eng)
	sys := handlers.NewConfigHandler(eng)

	// ===== Public =====
	e.GET("/ping", sys.Ping)
	e.GET("/health", sys.Health)
	e.POST("/auth/signin", auth.SignIn)
	e.POST("/auth/signup", auth.SignUp)

	authMW := middlewares.RequireAuth(cfg.JWTSecret)

	// ===== Any signed-in role =====
	api := e.Group("", authMW)
	api.GET("/schedule/today", att.TodaySchedule)
	api.GET("/attendance/today", att.Today)
	api.POST("/attendance/checkin", att.CheckIn)
	api.POST("/attendance/checkout", att.CheckOut)
	api.POST("/attendance/excuse", att.Excuse)
	api.POST("/attendance/credit", att.Credit)
	api.POST("/attendance/drop", att.Drop)
	api.GET("/config", sys.GetConfig)
	api.GET("/holiday/today", sys.HolidayToday)
	api.POST("/auth/change-password", auth.ChangePassword)

	// ===== Staff only =====
	st := e.Group("/staff", authMW,
		middlewares.RequireRole(models.RoleProfessor, models.RoleOfficer))
	st.POST("/override", staff.Override)
	st.POST("/makeup", staff.Makeup)
	st.GET("/dashboard", staff.Dashboard)
	st.GET("/summary", staff.Summary)
	st.GET("/dropdowns", staff.Dropdowns)
	st.POST("/reset-password", auth.ResetPassword)
	st.POST("/bulk-reset", auth.BulkReset)
}
