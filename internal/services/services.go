package services

import (
	"github.com/jesusemanuel87/inmobiliaria-api/internal/config"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/jobs"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/repository"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth           *AuthService
	User           *UserService
	Property       *PropertyService
	Contract       *ContractService
	Payment        *PaymentService
	Reconciliation *ReconciliationService
	Settings       *SettingsService
	Notification   *NotificationService
	Email          *EmailService
	Audit          *AuditService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config, db *gorm.DB, clock Clock) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	emailSvc := NewEmailService(cfg)
	auditSvc := NewAuditService(db)
	settingsSvc := NewSettingsService(repos.Setting, clock)
	imageSvc := NewImageService(cfg.StoragePath + "/uploads")

	paymentSvc := NewPaymentService(repos.Payment, repos.Contract, settingsSvc, notificationSvc, emailSvc, auditSvc, worker, clock)

	return &Services{
		Auth:           NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:           NewUserService(repos.User, worker, emailSvc, auditSvc),
		Property:       NewPropertyService(repos.Property, repos.Contract, imageSvc, auditSvc),
		Contract:       NewContractService(db, repos.Contract, repos.Property, repos.User, repos.Payment, settingsSvc, notificationSvc, emailSvc, auditSvc, worker, clock),
		Payment:        paymentSvc,
		Reconciliation: NewReconciliationService(repos.Contract, repos.Payment, paymentSvc, clock),
		Settings:       settingsSvc,
		Notification:   notificationSvc,
		Email:          emailSvc,
		Audit:          auditSvc,
	}
}
