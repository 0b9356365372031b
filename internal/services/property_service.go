package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/repository"
	"gorm.io/gorm"
)

type PropertyService struct {
	repo         repository.PropertyRepository
	contractRepo repository.ContractRepository
	imageSvc     *ImageService
	auditSvc     *AuditService
}

func NewPropertyService(repo repository.PropertyRepository, contractRepo repository.ContractRepository, imageSvc *ImageService, auditSvc *AuditService) *PropertyService {
	return &PropertyService{
		repo:         repo,
		contractRepo: contractRepo,
		imageSvc:     imageSvc,
		auditSvc:     auditSvc,
	}
}

func (s *PropertyService) FindByID(ctx context.Context, id uint) (*models.Property, error) {
	property, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return property, err
}

func (s *PropertyService) List(ctx context.Context, query *repository.PropertyQuery) ([]models.Property, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *PropertyService) Create(ctx context.Context, property *models.Property, actorID uint) error {
	if err := s.repo.Create(ctx, property); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, &actorID, models.AuditActionCreate, "property", property.ID, property.Address)
	return nil
}

func (s *PropertyService) Update(ctx context.Context, property *models.Property) error {
	return s.repo.Update(ctx, property)
}

// SoftDelete discards a property. Properties with a live contract
// cannot be discarded.
func (s *PropertyService) SoftDelete(ctx context.Context, id uint, actorID uint) error {
	property, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	contracts, err := s.contractRepo.FindByProperty(ctx, id)
	if err != nil {
		return err
	}
	for _, contract := range contracts {
		if !contract.IsTerminal() {
			return fmt.Errorf("%w: property has a reserved or active contract", ErrInvalidState)
		}
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, &actorID, models.AuditActionDelete, "property", id, property.Address)
	return nil
}

// AttachPhoto processes an uploaded photo and stores its paths on the
// property.
func (s *PropertyService) AttachPhoto(ctx context.Context, id uint, file multipart.File, header *multipart.FileHeader) (*models.Property, error) {
	property, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	originalPath, thumbPath, err := s.imageSvc.ProcessAndSavePropertyPhoto(file, header)
	if err != nil {
		return nil, err
	}

	property.ImagePath = &originalPath
	property.ThumbnailPath = &thumbPath
	if err := s.repo.Update(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}
