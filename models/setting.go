package models

// Setting is one runtime-tunable key/value pair: window sizes in minutes,
// semester boundaries, adjustment-period cutoffs.
type Setting struct {
	Key         string `json:"config_key" gorm:"primaryKey;size:60;column:config_key"`
	Value       string `json:"config_value" gorm:"size:120;column:config_value"`
	Description string `json:"description" gorm:"type:text"`
}
