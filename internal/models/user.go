package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents any person known to the agency: administrators and
// employees of the back office, plus tenants and owners who log in from
// the companion mobile client.
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	EncryptedPassword string     `gorm:"column:encrypted_password;not null" json:"-"`
	Role              string     `gorm:"default:tenant" json:"role"`
	FullName          string     `json:"full_name"`
	Phone             string     `json:"phone"`
	Identity          string     `gorm:"uniqueIndex" json:"identity"`
	Status            string     `gorm:"default:active" json:"status"`
	Address           *string    `json:"address"`
	DiscardedAt       *time.Time `gorm:"index" json:"-"`
	CreatedByID       *uint      `json:"created_by_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Associations
	CreatedBy     *User          `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Contracts     []Contract     `gorm:"foreignKey:TenantID" json:"contracts,omitempty"`
	Properties    []Property     `gorm:"foreignKey:OwnerID" json:"properties,omitempty"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleTenant
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	return nil
}

// Role constants
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleTenant   = "tenant"
	RoleOwner    = "owner"
)

// Status constants
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// IsAdmin returns true if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsEmployee returns true if user has employee role
func (u *User) IsEmployee() bool {
	return u.Role == RoleEmployee
}

// IsActive returns true if user status is active
func (u *User) IsActive() bool {
	return u.Status == StatusActive && u.DiscardedAt == nil
}

// IsDiscarded returns true if user is soft-deleted
func (u *User) IsDiscarded() bool {
	return u.DiscardedAt != nil
}

// UserResponse is the JSON response format for users
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Identity  string    `json:"identity"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Identity:  u.Identity,
		Role:      u.Role,
		Status:    u.Status,
		Address:   u.Address,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
