package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gmgenove/attendance-checker/models"
)

// Seed inserts the default settings and the holiday calendar. Everything is
// ON CONFLICT DO NOTHING so a deployment's edited values survive restarts.
func Seed(db *gorm.DB) error {
	settings := []models.Setting{
		{Key: "sem1_start", Value: "2025-09-01", Description: "Start date of 1st semester"},
		{Key: "sem1_end", Value: "2026-01-17", Description: "End date of 1st semester"},
		{Key: "sem1_adjustment_end", Value: "2025-11-30", Description: "Adjustment period end (Sem 1)"},
		{Key: "sem2_start", Value: "2026-02-09", Description: "Start date of 2nd semester"},
		{Key: "sem2_end", Value: "2026-06-21", Description: "End date of 2nd semester"},
		{Key: "sem2_adjustment_end", Value: "2026-03-06", Description: "Adjustment period end (Sem 2)"},
		{Key: "checkin_window_minutes", Value: "10", Description: "Minutes before class start check-in opens"},
		{Key: "late_window_minutes", Value: "5", Description: "Minutes after class start considered late"},
		{Key: "absent_window_minutes", Value: "10", Description: "Minutes after class start check-in closes"},
		{Key: "checkout_window_minutes", Value: "10", Description: "Minutes before end of class check-out opens (client hint)"},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error; err != nil {
		return err
	}

	holidays := []models.Holiday{
		{Date: "2026-01-01", Name: "New Years Day", Type: "Regular Holiday"},
		{Date: "2026-02-17", Name: "Chinese New Year", Type: "Special Non-Working Holiday"},
		{Date: "2026-04-02", Name: "Maundy Thursday", Type: "Regular Holiday"},
		{Date: "2026-04-03", Name: "Good Friday", Type: "Regular Holiday"},
		{Date: "2026-04-04", Name: "Black Saturday", Type: "Special Non-Working Holiday"},
		{Date: "2026-04-09", Name: "Araw ng Kagitingan", Type: "Regular Holiday"},
		{Date: "2026-05-01", Name: "Labor Day", Type: "Regular Holiday"},
		{Date: "2026-06-12", Name: "Independence Day", Type: "Regular Holiday"},
		{Date: "2026-08-21", Name: "Ninoy Aquino Day", Type: "Special Non-Working Holiday"},
		{Date: "2026-08-31", Name: "National Heroes Day", Type: "Regular Holiday"},
		{Date: "2026-11-01", Name: "All Saints Day", Type: "Special Non-Working Holiday"},
		{Date: "2026-11-02", Name: "All Souls Day", Type: "Special Non-Working Holiday"},
		{Date: "2026-11-30", Name: "Bonifacio Day", Type: "Regular Holiday"},
		{Date: "2026-12-08", Name: "Feast of the Immaculate Conception of Mary", Type: "Special Non-Working Holiday"},
		{Date: "2026-12-24", Name: "Christmas Eve", Type: "Special Non-Working Holiday"},
		{Date: "2026-12-25", Name: "Christmas Day", Type: "Regular Holiday"},
		{Date: "2026-12-30", Name: "Rizal Day", Type: "Regular Holiday"},
		{Date: "2026-12-31", Name: "Last Day of the Year", Type: "Special Non-Working Holiday"},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&holidays).Error
}
