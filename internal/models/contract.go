package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract represents a rental contract for a property
type Contract struct {
	ID                 uint             `gorm:"primaryKey" json:"id"`
	PropertyID         uint             `gorm:"not null;index" json:"property_id"`
	TenantID           uint             `gorm:"not null;index" json:"tenant_id"`
	CreatedByID        *uint            `gorm:"index" json:"created_by_id"`
	StartDate          time.Time        `gorm:"type:date;not null;index" json:"start_date"`
	EndDate            time.Time        `gorm:"type:date;not null;index" json:"end_date"`
	MonthlyRent        decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"monthly_rent"`
	Status             string           `gorm:"default:reserved;index" json:"status"`
	CancellationReason *string          `gorm:"type:text" json:"cancellation_reason"`
	TerminationDate    *time.Time       `gorm:"type:date" json:"termination_date"`
	TerminationPenalty *decimal.Decimal `gorm:"type:decimal(12,2)" json:"termination_penalty"`
	MonthsOwed         int              `gorm:"default:0" json:"months_owed"`
	AmountOwed         decimal.Decimal  `gorm:"type:decimal(12,2);default:0" json:"amount_owed"`
	TerminatedByID     *uint            `gorm:"index" json:"terminated_by_id"`
	TerminatedAt       *time.Time       `json:"terminated_at"`
	LockVersion        uint             `gorm:"default:0" json:"-"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`

	// Associations
	Property     Property  `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Tenant       User      `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	CreatedBy    *User     `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	TerminatedBy *User     `gorm:"foreignKey:TerminatedByID" json:"terminated_by,omitempty"`
	Payments     []Payment `gorm:"foreignKey:ContractID" json:"payments,omitempty"`
}

// TableName specifies the table name for Contract
func (Contract) TableName() string {
	return "contracts"
}

// Contract status constants
const (
	ContractStatusReserved  = "reserved"
	ContractStatusActive    = "active"
	ContractStatusFinished  = "finished"
	ContractStatusCancelled = "cancelled"
)

// IsTerminal returns true if the contract is in a terminal state
func (c *Contract) IsTerminal() bool {
	return c.Status == ContractStatusFinished || c.Status == ContractStatusCancelled
}

// MayActivate returns true if contract can transition to active
func (c *Contract) MayActivate() bool {
	return c.Status == ContractStatusReserved
}

// MayFinish returns true if contract can be finished
func (c *Contract) MayFinish() bool {
	return c.Status == ContractStatusReserved || c.Status == ContractStatusActive
}

// MayCancel returns true if contract can be cancelled
func (c *Contract) MayCancel() bool {
	return c.Status == ContractStatusReserved || c.Status == ContractStatusActive
}

// Overlaps reports whether the contract's date range shares at least one
// day with [start, end]. Ranges are closed intervals: two ranges overlap
// unless one ends strictly before the other begins.
func (c *Contract) Overlaps(start, end time.Time) bool {
	return !(end.Before(c.StartDate) || start.After(c.EndDate))
}

// TargetStatus computes the status the contract should hold on the given
// day, derived purely from its dates. Cancelled is sticky and checked first.
func (c *Contract) TargetStatus(today time.Time) string {
	switch {
	case c.Status == ContractStatusCancelled:
		return ContractStatusCancelled
	case c.EndDate.Before(today):
		return ContractStatusFinished
	case !c.StartDate.After(today):
		return ContractStatusActive
	default:
		return ContractStatusReserved
	}
}

// DurationMonths returns the whole calendar months between start and end,
// ignoring day-of-month.
func (c *Contract) DurationMonths() int {
	return MonthsBetween(c.StartDate, c.EndDate)
}

// MonthsBetween returns the whole calendar month difference between two
// dates (year*12 + month), ignoring day-of-month. Negative results are
// clamped to zero.
func MonthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if months < 0 {
		return 0
	}
	return months
}

// ContractResponse is the JSON response format for contracts
type ContractResponse struct {
	ID                 uint              `json:"id"`
	PropertyID         uint              `json:"property_id"`
	PropertyAddress    string            `json:"property_address"`
	TenantID           uint              `json:"tenant_id"`
	TenantName         string            `json:"tenant_name"`
	TenantIdentity     string            `json:"tenant_identity"`
	StartDate          time.Time         `json:"start_date"`
	EndDate            time.Time         `json:"end_date"`
	MonthlyRent        decimal.Decimal   `json:"monthly_rent"`
	Status             string            `json:"status"`
	CancellationReason *string           `json:"cancellation_reason"`
	TerminationDate    *time.Time        `json:"termination_date"`
	TerminationPenalty *decimal.Decimal  `json:"termination_penalty"`
	MonthsOwed         int               `json:"months_owed"`
	AmountOwed         decimal.Decimal   `json:"amount_owed"`
	CreatedBy          string            `json:"created_by,omitempty"`
	DurationMonths     int               `json:"duration_months"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	Payments           []PaymentResponse `json:"payments,omitempty"`
}

// ToResponse converts Contract to ContractResponse
func (c *Contract) ToResponse() ContractResponse {
	resp := ContractResponse{
		ID:                 c.ID,
		PropertyID:         c.PropertyID,
		TenantID:           c.TenantID,
		StartDate:          c.StartDate,
		EndDate:            c.EndDate,
		MonthlyRent:        c.MonthlyRent,
		Status:             c.Status,
		CancellationReason: c.CancellationReason,
		TerminationDate:    c.TerminationDate,
		TerminationPenalty: c.TerminationPenalty,
		MonthsOwed:         c.MonthsOwed,
		AmountOwed:         c.AmountOwed,
		DurationMonths:     c.DurationMonths(),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}

	if c.Property.ID != 0 {
		resp.PropertyAddress = c.Property.Address
	}
	if c.Tenant.ID != 0 {
		resp.TenantName = c.Tenant.FullName
		resp.TenantIdentity = maskIdentity(c.Tenant.Identity)
	}
	if c.CreatedBy != nil {
		resp.CreatedBy = c.CreatedBy.FullName
	}
	for _, payment := range c.Payments {
		resp.Payments = append(resp.Payments, payment.ToResponse())
	}

	return resp
}

// maskIdentity masks an identity string for privacy
func maskIdentity(identity string) string {
	if len(identity) <= 4 {
		masked := ""
		for range identity {
			masked += "*"
		}
		return masked
	}
	masked := identity[:4]
	for i := 4; i < len(identity)-3; i++ {
		masked += "*"
	}
	masked += identity[len(identity)-3:]
	return masked
}
