package handlers

import (
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/gmgenove/attendance-checker/engine"
)

var validate = validator.New()

// Every response is an {ok: bool, ...} envelope. Engine failures are
// ordinary ok:false payloads, never transport errors.

func okJSON(c echo.Context, data map[string]any) error {
	payload := map[string]any{"ok": true}
	for k, v := range data {
		payload[k] = v
	}
	return c.JSON(http.StatusOK, payload)
}

func failJSON(c echo.Context, err error) error {
	if msg, known := engine.ClientMessage(err); known {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "error": msg})
	}
	log.Printf("[http] %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, map[string]any{"ok": false, "error": "Server error"})
}

// bindReq binds and validates a request DTO. On failure it has already
// written the response; callers just return err.
func bindReq(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "INVALID_PAYLOAD"})
	}
	if err := validate.Struct(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "MISSING_FIELDS"})
	}
	return true, nil
}

// userID reads the roster id the auth middleware attached.
func userID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}
