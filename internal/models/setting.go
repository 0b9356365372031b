package models

import "time"

// Setting is a key/value configuration entry editable from the back
// office. Values are stored as strings and parsed by the settings
// service on read.
type Setting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"uniqueIndex;not null" json:"key"`
	Value       string    `gorm:"not null" json:"value"`
	Category    string    `gorm:"default:general;index" json:"category"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Setting
func (Setting) TableName() string {
	return "settings"
}

// Setting category constants
const (
	SettingCategoryMinimumMonths           = "minimum_months"
	SettingCategoryEarlyTerminationPenalty = "early_termination_penalty"
	SettingCategoryLateTerminationPenalty  = "late_termination_penalty"
	SettingCategoryInterestTiers           = "interest_tiers"
	SettingCategoryGeneral                 = "general"
)

// Well-known setting keys read by the contract and payment engines.
const (
	SettingEarlyTerminationRate = "termination.early_rate"
	SettingLateTerminationRate  = "termination.late_rate"
	SettingInterestTier1MinDays = "interest.tier1.min_days"
	SettingInterestTier1Rate    = "interest.tier1.rate"
	SettingInterestTier2MinDays = "interest.tier2.min_days"
	SettingInterestTier2Rate    = "interest.tier2.rate"
	SettingInterestMonthlyRate  = "interest.monthly_rate"
)

// SettingResponse is the JSON response format for settings
type SettingResponse struct {
	ID          uint      `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Category    string    `json:"category"`
	Description *string   `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToResponse converts Setting to SettingResponse
func (s *Setting) ToResponse() SettingResponse {
	return SettingResponse{
		ID:          s.ID,
		Key:         s.Key,
		Value:       s.Value,
		Category:    s.Category,
		Description: s.Description,
		UpdatedAt:   s.UpdatedAt,
	}
}
