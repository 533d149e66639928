package models

// Holiday is one entry of the school holiday calendar.
type Holiday struct {
	Date string `json:"holiday_date" gorm:"primaryKey;size:10;column:holiday_date"` // YYYY-MM-DD
	Name string `json:"holiday_name" gorm:"size:120;column:holiday_name"`
	Type string `json:"holiday_type" gorm:"size:60;column:holiday_type"` // Regular / Special Non-Working
}
