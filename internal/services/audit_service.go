package services

import (
	"context"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/jesusemanuel87/inmobiliaria-api/pkg/logger"
	"gorm.io/gorm"
)

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Log records an audit entry. Audit failures are logged and swallowed
// so they never break the operation being audited.
func (s *AuditService) Log(ctx context.Context, userID *uint, action, entityType string, entityID uint, details string) {
	if s.db == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		Details:    &details,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Error("failed to write audit entry", "action", action, "entity", entityType, "error", err)
	}
}

// List retrieves audit logs, newest first
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	if err := s.db.WithContext(ctx).Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := s.db.WithContext(ctx).
		Preload("User").
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&logs)
	return logs, total, result.Error
}
