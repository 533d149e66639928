package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/gmgenove/attendance-checker/database"
	"github.com/gmgenove/attendance-checker/engine"
	"github.com/gmgenove/attendance-checker/models"
)

type AttendanceHandler struct {
	Eng *engine.Engine
}

func NewAttendanceHandler(eng *engine.Engine) *AttendanceHandler {
	return &AttendanceHandler{Eng: eng}
}

type classReq struct {
	ClassCode string `json:"class_code" validate:"required"`
}

// POST /attendance/checkin
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	var req classReq
	if ok, err := bindReq(c, &req); !ok {
		return err
	}
	res, err := h.Eng.CheckIn(req.ClassCode, userID(c))
	if err != nil {
		return failJSON(c, err)
	}
	out := map[string]any{"status": res.Status, "timestamp": res.TimeIn}
	if res.Already {
		out["message"] = "Already checked in"
	}
	return okJSON(c, out)
}

// POST /attendance/checkout
func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	var req classReq
	if ok, err := bindReq(c, &req); !ok {
		return err
	}
	timeOut, err := h.Eng.CheckOut(req.ClassCode, userID(c))
	if err != nil {
		return failJSON(c, err)
	}
	return okJSON(c, map[string]any{"time_out": timeOut})
}

// GET /attendance/today?class=CODE
func (h *AttendanceHandler) Today(c echo.Context) error {
	classCode := c.QueryParam("class")
	if classCode == "" {
		return failJSON(c, &engine.ValidationError{Msg: "class query parameter is required"})
	}
	rec, err := h.Eng.GetToday(classCode, userID(c))
	if err != nil {
		return failJSON(c, err)
	}
	return okJSON(c, map[string]any{"record": rec})
}

type excuseReq struct {
	ClassCode string `json:"class_code" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
}

// POST /attendance/excuse
func (h *AttendanceHandler) Excuse(c echo.Context) error {
	var req excuseReq
	if ok, err := bindReq(c, &req); !ok {
		return err
	}
	if err := h.Eng.FileExcuse(req.ClassCode, userID(c), req.Reason); err != nil {
		return failJSON(c, err)
	}
	return okJSON(c, map[string]any{"message": "Excuse filed successfully."})
}

// POST /attendance/credit
func (h *AttendanceHandler) Credit(c echo.Context) error {
	return h.creditDrop(c, models.StatusCredited)
}

// POST /attendance/drop
func (h *AttendanceHandler) Drop(c echo.Context) error {
	return h.creditDrop(c, models.StatusDropped)
}

func (h *AttendanceHandler) creditDrop(c echo.Context, kind models.Status) error {
	var req classReq
	if ok, err := bindReq(c, &req); !ok {
		return err
	}
	res, err := h.Eng.CreditDrop(req.ClassCode, userID(c), kind)
	if err != nil {
		return failJSON(c, err)
	}
	return okJSON(c, map[string]any{"written": res.Written, "dates": res.Dates})
}

// GET /schedule/today
func (h *AttendanceHandler) TodaySchedule(c echo.Context) error {
	entries, err := h.Eng.TodaySchedule()
	if err != nil {
		return failJSON(c, err)
	}

	// Decorate with professor names the way the roster knows them.
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.ProfessorID != "" {
			ids = append(ids, e.ProfessorID)
		}
	}
	names := map[string]string{}
	if len(ids) > 0 {
		var profs []models.User
		if err := database.DB.Find(&profs, "user_id IN ?", ids).Error; err != nil {
			return failJSON(c, err)
		}
		for _, p := range profs {
			names[p.UserID] = p.UserName
		}
	}
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"class_code":     e.ClassCode,
			"class_name":     e.ClassName,
			"days":           e.DayList(),
			"start_time":     e.StartTime,
			"end_time":       e.EndTime,
			"professor_name": names[e.ProfessorID],
		})
	}
	return okJSON(c, map[string]any{"schedule": out})
}
