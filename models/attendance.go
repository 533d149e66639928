package models

import "time"

// AttendanceRecord is the authoritative row for one (date, class, student)
// triple. The composite primary key is the only concurrency control: two
// writers racing on the same key converge on whichever commits first.
type AttendanceRecord struct {
	ClassDate string `json:"class_date" gorm:"primaryKey;size:10"` // YYYY-MM-DD
	ClassCode string `json:"class_code" gorm:"primaryKey;size:20"`
	StudentID string `json:"student_id" gorm:"primaryKey;size:20"`

	Status  Status `json:"status" gorm:"size:20;not null"`
	TimeIn  string `json:"time_in" gorm:"size:8"`  // HH:MM:SS, empty on synthetic rows
	TimeOut string `json:"time_out" gorm:"size:8"` // set only on PRESENT/LATE
	Reason  string `json:"reason" gorm:"type:text"`

	// Synthetic marks override rows carrying no real attendance event
	// (holiday, suspension, cancellation, credited, dropped, pending
	// make-up). "Reset to normal" deletes exactly these.
	Synthetic bool `json:"synthetic"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
