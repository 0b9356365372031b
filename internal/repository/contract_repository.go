package repository

import (
	"context"
	"time"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"gorm.io/gorm"
)

// ContractRepository defines the interface for contract data access
type ContractRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Contract, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Contract, error)
	FindByProperty(ctx context.Context, propertyID uint) ([]models.Contract, error)
	FindByTenant(ctx context.Context, tenantID uint) ([]models.Contract, error)
	FindOverlapping(ctx context.Context, propertyID uint, start, end time.Time, excludeID uint) ([]models.Contract, error)
	FindNonTerminal(ctx context.Context) ([]models.Contract, error)
	FindBlockingRanges(ctx context.Context, propertyID uint, from time.Time) ([]models.Contract, error)
	Create(ctx context.Context, contract *models.Contract) error
	Update(ctx context.Context, contract *models.Contract) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ContractQuery) ([]models.Contract, int64, error)
}

// ContractQuery extends ListQuery with contract-specific filters
type ContractQuery struct {
	*ListQuery
	Status     string
	PropertyID uint
	TenantID   uint
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	// Property, Tenant and CreatedBy are belongs-to so a single Joins
	// query covers them; Payments stays a Preload (one extra query).
	err := r.db.WithContext(ctx).
		Joins("Property").
		Joins("Tenant").
		Joins("CreatedBy").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_date ASC")
		}).
		First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByProperty(ctx context.Context, propertyID uint) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Preload("Tenant").
		Order("start_date ASC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) FindByTenant(ctx context.Context, tenantID uint) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Preload("Property").
		Preload("Payments").
		Find(&contracts).Error
	return contracts, err
}

// FindOverlapping returns contracts on the property whose closed date
// range shares at least one day with [start, end], skipping cancelled
// contracts and, when excludeID > 0, the contract being edited.
func (r *contractRepository) FindOverlapping(ctx context.Context, propertyID uint, start, end time.Time, excludeID uint) ([]models.Contract, error) {
	var contracts []models.Contract
	db := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("status <> ?", models.ContractStatusCancelled).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) FindNonTerminal(ctx context.Context) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{models.ContractStatusReserved, models.ContractStatusActive}).
		Order("id ASC").
		Find(&contracts).Error
	return contracts, err
}

// FindBlockingRanges returns the non-cancelled contracts on a property
// that end on or after the given day, ordered by start date. Used by
// the availability endpoints.
func (r *contractRepository) FindBlockingRanges(ctx context.Context, propertyID uint, from time.Time) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("status <> ?", models.ContractStatusCancelled).
		Where("end_date >= ?", from).
		Order("start_date ASC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

// Update saves the contract guarded by its lock version. If the row was
// changed since it was read the update matches nothing and the caller
// gets ErrStaleRecord.
func (r *contractRepository) Update(ctx context.Context, contract *models.Contract) error {
	currentVersion := contract.LockVersion
	contract.LockVersion++
	result := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ? AND lock_version = ?", contract.ID, currentVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(contract)
	if result.Error != nil {
		contract.LockVersion = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		contract.LockVersion = currentVersion
		return ErrStaleRecord
	}
	return nil
}

func (r *contractRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Contract{}, id).Error
}

func (r *contractRepository) List(ctx context.Context, query *ContractQuery) ([]models.Contract, int64, error) {
	var contracts []models.Contract
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Contract{})

	if query.Status != "" {
		db = db.Where("contracts.status = ?", query.Status)
	}
	if query.PropertyID > 0 {
		db = db.Where("contracts.property_id = ?", query.PropertyID)
	}
	if query.TenantID > 0 {
		db = db.Where("contracts.tenant_id = ?", query.TenantID)
	}

	if query.Filters != nil {
		if val, ok := query.Filters["start_from"]; ok && val != "" {
			db = db.Where("contracts.start_date >= ?", val)
		}
		if val, ok := query.Filters["start_to"]; ok && val != "" {
			db = db.Where("contracts.start_date <= ?", val)
		}
	}

	// JOINs only for filtering; associations loaded via Preload below
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN users ON users.id = contracts.tenant_id").
			Joins("LEFT JOIN properties ON properties.id = contracts.property_id").
			Where("users.full_name ILIKE ? OR users.email ILIKE ? OR users.identity ILIKE ? OR properties.address ILIKE ?",
				search, search, search, search)
	}

	// Count on a separate session so Count() does not alter the main query
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
		db = db.Order("contracts.created_at DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Select("contracts.*").
		Preload("Property").
		Preload("Tenant").
		Find(&contracts).Error

	return contracts, total, err
}
