package models

import "time"

// AuditLog records a state-changing action taken by a user
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	Action     string    `gorm:"not null;index" json:"action"`
	EntityType string    `gorm:"index" json:"entity_type"`
	EntityID   *uint     `gorm:"index" json:"entity_id"`
	Details    *string   `gorm:"type:text" json:"details"`
	IPAddress  string    `json:"ip_address"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit action constants
const (
	AuditActionCreate   = "create"
	AuditActionUpdate   = "update"
	AuditActionCancel   = "cancel"
	AuditActionFinalize = "finalize"
	AuditActionPay      = "pay"
	AuditActionVoid     = "void"
	AuditActionLogin    = "login"
	AuditActionDelete   = "delete"
)
