package repository

import (
	"context"
	"time"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"gorm.io/gorm"
)

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindByContract(ctx context.Context, contractID uint) ([]models.Payment, error)
	FindOutstandingByContract(ctx context.Context, contractID uint, dueBefore time.Time) ([]models.Payment, error)
	FindUnpaidDueBefore(ctx context.Context, day time.Time) ([]models.Payment, error)
	FindOverdue(ctx context.Context) ([]models.Payment, error)
	ExistsForContract(ctx context.Context, contractID uint) (bool, error)
	Create(ctx context.Context, payment *models.Payment) error
	CreateBatch(ctx context.Context, payments []models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	DeleteByContract(ctx context.Context, contractID uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Contract.Property").
		Preload("Contract.Tenant").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByContract(ctx context.Context, contractID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("due_date ASC").
		Find(&payments).Error
	return payments, err
}

// FindOutstandingByContract returns the pending and overdue installments
// of a contract due on or before the given day, in due-date order.
func (r *paymentRepository) FindOutstandingByContract(ctx context.Context, contractID uint, dueBefore time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Where("status IN ?", []string{models.PaymentStatusPending, models.PaymentStatusOverdue}).
		Where("due_date <= ?", dueBefore).
		Where("voided_at IS NULL").
		Order("due_date ASC").
		Find(&payments).Error
	return payments, err
}

// FindUnpaidDueBefore returns pending and overdue installments whose due
// date is strictly before the given day. Fed to the payment sweep.
// Installments of cancelled contracts stay in scope: debts that fell due
// before the cancellation remain collectible.
func (r *paymentRepository) FindUnpaidDueBefore(ctx context.Context, day time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{models.PaymentStatusPending, models.PaymentStatusOverdue}).
		Where("due_date < ?", day).
		Where("voided_at IS NULL").
		Order("due_date ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindOverdue(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Contract.Property").
		Preload("Contract.Tenant").
		Where("status = ?", models.PaymentStatusOverdue).
		Order("due_date ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) ExistsForContract(ctx context.Context, contractID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("contract_id = ?", contractID).
		Count(&count).Error
	return count > 0, err
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// CreateBatch inserts the full installment plan in a single statement so
// the plan lands all-or-nothing.
func (r *paymentRepository) CreateBatch(ctx context.Context, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&payments).Error
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *paymentRepository) DeleteByContract(ctx context.Context, contractID uint) error {
	return r.db.WithContext(ctx).Where("contract_id = ?", contractID).Delete(&models.Payment{}).Error
}

func (r *paymentRepository) List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Payment{})

	if status := query.Filters["status"]; status != "" {
		db = db.Where("payments.status = ?", status)
	}
	if val, ok := query.Filters["due_from"]; ok && val != "" {
		db = db.Where("payments.due_date >= ?", val)
	}
	if val, ok := query.Filters["due_to"]; ok && val != "" {
		db = db.Where("payments.due_date <= ?", val)
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("JOIN contracts ON contracts.id = payments.contract_id").
			Joins("JOIN users ON users.id = contracts.tenant_id").
			Joins("JOIN properties ON properties.id = contracts.property_id").
			Where("users.full_name ILIKE ? OR users.identity ILIKE ? OR properties.address ILIKE ?",
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
		db = db.Order("payments.due_date ASC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Select("payments.*").
		Preload("Contract.Property").
		Preload("Contract.Tenant").
		Find(&payments).Error

	return payments, total, err
}
