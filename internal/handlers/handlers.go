package handlers

import (
	"github.com/jesusemanuel87/inmobiliaria-api/internal/services"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/storage"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Property     *PropertyHandler
	Contract     *ContractHandler
	Payment      *PaymentHandler
	Setting      *SettingHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, storage *storage.LocalStorage) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.User),
		Property:     NewPropertyHandler(svcs.Property, svcs.Contract),
		Contract:     NewContractHandler(svcs.Contract, svcs.Payment),
		Payment:      NewPaymentHandler(svcs.Payment, storage),
		Setting:      NewSettingHandler(svcs.Settings),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
		Job:          NewJobHandler(svcs.Reconciliation),
	}
}
