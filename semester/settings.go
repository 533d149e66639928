package semester

import (
	"gorm.io/gorm"

	"github.com/gmgenove/attendance-checker/models"
)

// LoadSettings reads the whole settings table into a map. Callers load once
// per operation so successive checks inside one call can't see different
// values.
func LoadSettings(db *gorm.DB) (map[string]string, error) {
	var rows []models.Setting
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}
