package repository

import (
	"context"
	"time"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"gorm.io/gorm"
)

// PropertyRepository defines the interface for property data access
type PropertyRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Property, error)
	FindByOwner(ctx context.Context, ownerID uint) ([]models.Property, error)
	Create(ctx context.Context, property *models.Property) error
	Update(ctx context.Context, property *models.Property) error
	SoftDelete(ctx context.Context, id uint) error
	List(ctx context.Context, query *PropertyQuery) ([]models.Property, int64, error)
}

// PropertyQuery extends ListQuery with property-specific filters
type PropertyQuery struct {
	*ListQuery
	City         string
	PropertyType string
	OwnerID      uint
	Available    *bool
}

type propertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) FindByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).
		Joins("Owner").
		First(&property, id).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) FindByOwner(ctx context.Context, ownerID uint) ([]models.Property, error) {
	var properties []models.Property
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND discarded_at IS NULL", ownerID).
		Find(&properties).Error
	return properties, err
}

func (r *propertyRepository) Create(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Create(property).Error
}

func (r *propertyRepository) Update(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Save(property).Error
}

func (r *propertyRepository) SoftDelete(ctx context.Context, id uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("id = ?", id).
		Update("discarded_at", now).Error
}

func (r *propertyRepository) List(ctx context.Context, query *PropertyQuery) ([]models.Property, int64, error) {
	var properties []models.Property
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Property{}).Where("properties.discarded_at IS NULL")

	if query.City != "" {
		db = db.Where("properties.city = ?", query.City)
	}
	if query.PropertyType != "" {
		db = db.Where("properties.property_type = ?", query.PropertyType)
	}
	if query.OwnerID > 0 {
		db = db.Where("properties.owner_id = ?", query.OwnerID)
	}
	if query.Available != nil {
		db = db.Where("properties.available = ?", *query.Available)
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN users ON users.id = properties.owner_id").
			Where("properties.address ILIKE ? OR properties.city ILIKE ? OR users.full_name ILIKE ?",
				search, search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("properties.created_at DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Select("properties.*").
		Preload("Owner").
		Find(&properties).Error

	return properties, total, err
}
