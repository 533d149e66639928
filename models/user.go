package models

// User is one roster entry. Accounts exist in the roster before they have a
// password; signup only sets the hash.
type User struct {
	UserID       string `json:"user_id" gorm:"primaryKey;size:20;column:user_id"`
	UserName     string `json:"user_name" gorm:"size:120;column:user_name"`
	UserRole     string `json:"user_role" gorm:"size:20;index;column:user_role"` // student / officer / professor
	PasswordHash string `json:"-" gorm:"size:100;column:password_hash"`
}

const (
	RoleStudent   = "student"
	RoleOfficer   = "officer"
	RoleProfessor = "professor"
)

// AttendingRoles are the roles the engine treats as "active students" when
// fanning out class-wide writes.
var AttendingRoles = []string{RoleStudent, RoleOfficer}
