package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents one monthly installment under a contract
type Payment struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ContractID     uint            `gorm:"not null;index" json:"contract_id"`
	Number         int             `gorm:"not null" json:"number"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	InterestAmount decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"interest_amount"`
	PenaltyAmount  decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"penalty_amount"`
	DueDate        time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	PaidDate       *time.Time      `gorm:"type:date" json:"paid_date"`
	Status         string          `gorm:"default:pending;not null;index" json:"status"`
	Method         *string         `gorm:"size:50" json:"method"`
	Notes          *string         `gorm:"type:text" json:"notes"`
	CreatedByID    *uint           `gorm:"index" json:"created_by_id"`
	VoidedByID     *uint           `gorm:"index" json:"voided_by_id"`
	VoidedAt       *time.Time      `json:"voided_at"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Associations
	Contract Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
	VoidedBy *User    `gorm:"foreignKey:VoidedByID" json:"voided_by,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment status constants
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusOverdue = "overdue"
)

// Total is the collectible amount for the installment. It is always
// derived from its three components and never stored independently.
func (p *Payment) Total() decimal.Decimal {
	return p.Amount.Add(p.InterestAmount).Add(p.PenaltyAmount)
}

// IsPaid returns true if the installment has been settled
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

// IsOutstanding returns true if the installment is still collectible
func (p *Payment) IsOutstanding() bool {
	return p.Status == PaymentStatusPending || p.Status == PaymentStatusOverdue
}

// MayPay returns true if the installment can be registered as paid
func (p *Payment) MayPay() bool {
	return p.IsOutstanding() && p.VoidedAt == nil
}

// MayMarkOverdue returns true if the installment can flip to overdue
func (p *Payment) MayMarkOverdue() bool {
	return p.Status == PaymentStatusPending
}

// IsVoided returns true if the installment was administratively voided
func (p *Payment) IsVoided() bool {
	return p.VoidedAt != nil
}

// DaysLate returns the number of whole days the installment is past its
// due date as of the given day; zero when not yet due or already paid.
func (p *Payment) DaysLate(asOf time.Time) int {
	if p.IsPaid() || !asOf.After(p.DueDate) {
		return 0
	}
	return int(asOf.Sub(p.DueDate).Hours() / 24)
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID             uint            `json:"id"`
	ContractID     uint            `json:"contract_id"`
	Number         int             `json:"number"`
	Amount         decimal.Decimal `json:"amount"`
	InterestAmount decimal.Decimal `json:"interest_amount"`
	PenaltyAmount  decimal.Decimal `json:"penalty_amount"`
	Total          decimal.Decimal `json:"total"`
	DueDate        time.Time       `json:"due_date"`
	PaidDate       *time.Time      `json:"paid_date"`
	Status         string          `json:"status"`
	Method         *string         `json:"method"`
	Notes          *string         `json:"notes"`
	Voided         bool            `json:"voided"`
	TenantName     string          `json:"tenant_name,omitempty"`
	PropertyAddress string         `json:"property_address,omitempty"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:             p.ID,
		ContractID:     p.ContractID,
		Number:         p.Number,
		Amount:         p.Amount,
		InterestAmount: p.InterestAmount,
		PenaltyAmount:  p.PenaltyAmount,
		Total:          p.Total(),
		DueDate:        p.DueDate,
		PaidDate:       p.PaidDate,
		Status:         p.Status,
		Method:         p.Method,
		Notes:          p.Notes,
		Voided:         p.IsVoided(),
	}

	if p.Contract.ID != 0 {
		if p.Contract.Tenant.ID != 0 {
			resp.TenantName = p.Contract.Tenant.FullName
		}
		if p.Contract.Property.ID != 0 {
			resp.PropertyAddress = p.Contract.Property.Address
		}
	}

	return resp
}
