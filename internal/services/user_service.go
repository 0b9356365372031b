package services

import (
	"context"
	"errors"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/jobs"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/repository"
	"gorm.io/gorm"
)

type UserService struct {
	repo     repository.UserRepository
	worker   *jobs.Worker
	emailSvc *EmailService
	auditSvc *AuditService
}

func NewUserService(repo repository.UserRepository, worker *jobs.Worker, emailSvc *EmailService, auditSvc *AuditService) *UserService {
	return &UserService{
		repo:     repo,
		worker:   worker,
		emailSvc: emailSvc,
		auditSvc: auditSvc,
	}
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}

func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return s.repo.List(ctx, query)
}

// Create registers a new user with a hashed password and sends a
// welcome email in the background.
func (s *UserService) Create(ctx context.Context, user *models.User, password string, actorID uint) error {
	if _, err := s.repo.FindByEmail(ctx, user.Email); err == nil {
		return ErrDuplicate
	}
	if user.Identity != "" {
		if _, err := s.repo.FindByIdentity(ctx, user.Identity); err == nil {
			return ErrDuplicate
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	user.EncryptedPassword = hash
	user.CreatedByID = &actorID

	if err := s.repo.Create(ctx, user); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, &actorID, models.AuditActionCreate, "user", user.ID, user.Email)

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.emailSvc.SendAccountCreated(ctx, user)
	})
	return nil
}

func (s *UserService) Update(ctx context.Context, user *models.User) error {
	return s.repo.Update(ctx, user)
}

// SoftDelete discards a user without removing the row
func (s *UserService) SoftDelete(ctx context.Context, id uint, actorID uint) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, &actorID, models.AuditActionDelete, "user", id, "")
	return nil
}

func (s *UserService) Restore(ctx context.Context, id uint) error {
	return s.repo.Restore(ctx, id)
}
