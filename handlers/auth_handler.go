package handlers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gmgenove/attendance-checker/database"
	"github.com/gmgenove/attendance-checker/models"
)

// Accounts live in the roster before they have a password; signup only sets
// the hash. The default used by staff resets is deliberately throwaway.
const defaultPassword = "pass123"

type AuthHandler struct {
	JWTSecret string
}

func NewAuthHandler(secret string) *AuthHandler {
	return &AuthHandler{JWTSecret: secret}
}

func (h *AuthHandler) signJWT(user models.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.UserID,
		"role": user.UserRole,
		"name": user.UserName,
		"jti":  uuid.NewString(),
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tk.SignedString([]byte(h.JWTSecret))
}

type signInReq struct {
	ID       string `json:"id" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// POST /auth/signin
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInReq
	if ok, err := bindReq(c, &req); !ok {
		return err
	}

	var user models.User
	err := database.DB.First(&user, "user_id = ? AND user_role = ?", req.ID, req.Role).Error
	if err == gorm.ErrRecordNotFound {
		return c.JSON(http.StatusNotFound, map[string]any{"ok": false, "error": "User not found"})
	}
	if err != nil {
		return failJSON(c, err)
	}
	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]any{"ok": false, "error": "Invalid credentials"})
	}

	token, err := h.signJWT(user, 12*time.Hour)
	if err != nil {
		return failJSON(c, err)
	}
	return okJSON(c, map[string]any{
		"token": token,
		"user":  map[string]string{"id": user.UserID, "name": user.UserName, "role": user.UserRole},
	})
}

// POST /auth/signup — first-time password set for a roster entry.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signInReq
	if ok, err := bindReq(c, &req); !ok {
		return err
	}

	var user models.User
	err := database.DB.First(&user, "user_id = ? AND user_role = ?", req.ID, req.Role).Error
	if err == gorm.ErrRecordNotFound {
		return okFalse(c, "ID not found in roster")
	}
	if err != nil {
		return failJSON(c, err)
	}
	if user.PasswordHash != "" {
		return okFalse(c, "Account already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return failJSON(c, err)
	}
	if err := database.DB.Model(&models.User{}).Where("user_id = ?", user.UserID).
		Update("password_hash", string(hash)).Error; err != nil {
		return failJSON(c, err)
	}
	return okJSON(c, map[string]any{"message": "Signup successful"})
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// POST /auth/change-password (authenticated)
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if ok, err := bindReq(c, &req); !ok {
		return err
	}

	var user models.User
	if err := database.DB.First(&user, "user_id = ?", userID(c)).Error; err != nil {
		return failJSON(c, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return okFalse(c, "Current password is incorrect.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return failJSON(c, err)
	}
	if err := database.DB.Model(&models.User{}).Where("user_id = ?", user.UserID).
		Update("password_hash", string(hash)).Error; err != nil {
		return failJSON(c, err)
	}
	return okJSON(c, map[string]any{"message": "Password updated successfully!"})
}

type resetPasswordReq struct {
	TargetUserID string `json:"target_user_id" validate:"required"`
}

// POST /staff/reset-password
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if ok, err := bindReq(c, &req); !ok {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return failJSON(c, err)
	}
	res := database.DB.Model(&models.User{}).Where("user_id = ?", req.TargetUserID).
		Update("password_hash", string(hash))
	if res.Error != nil {
		return failJSON(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return okFalse(c, "User not found")
	}
	return okJSON(c, map[string]any{"message": "Password reset to " + defaultPassword})
}

// POST /staff/bulk-reset — roster-wide reset for every attending account.
func (h *AuthHandler) BulkReset(c echo.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return failJSON(c, err)
	}
	res := database.DB.Model(&models.User{}).Where("user_role IN ?", models.AttendingRoles).
		Update("password_hash", string(hash))
	if res.Error != nil {
		return failJSON(c, res.Error)
	}
	return okJSON(c, map[string]any{"reset": res.RowsAffected})
}

func okFalse(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, map[string]any{"ok": false, "error": msg})
}
