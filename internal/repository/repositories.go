package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrStaleRecord is returned by optimistic-locked updates when the row
// was modified by someone else since it was read.
var ErrStaleRecord = errors.New("record was modified concurrently")

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Property     PropertyRepository
	Contract     ContractRepository
	Payment      PaymentRepository
	Setting      SettingRepository
	Notification NotificationRepository
	RefreshToken RefreshTokenRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Property:     NewPropertyRepository(db),
		Contract:     NewContractRepository(db),
		Payment:      NewPaymentRepository(db),
		Setting:      NewSettingRepository(db),
		Notification: NewNotificationRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
	}
}
