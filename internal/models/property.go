package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property represents a rentable property managed by the agency
type Property struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OwnerID        uint            `gorm:"not null;index" json:"owner_id"`
	Address        string          `gorm:"not null" json:"address"`
	City           string          `json:"city"`
	PropertyType   string          `gorm:"default:apartment;index" json:"property_type"`
	Rooms          int             `json:"rooms"`
	SuggestedRent  decimal.Decimal `gorm:"type:decimal(12,2)" json:"suggested_rent"`
	Description    *string         `gorm:"type:text" json:"description"`
	ImagePath      *string         `json:"image_path"`
	ThumbnailPath  *string         `json:"thumbnail_path"`
	Latitude       *float64        `json:"latitude"`
	Longitude      *float64        `json:"longitude"`
	Available      bool            `gorm:"default:true;index" json:"available"`
	DiscardedAt    *time.Time      `gorm:"index" json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Associations
	Owner     User       `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Contracts []Contract `gorm:"foreignKey:PropertyID" json:"contracts,omitempty"`
}

// TableName specifies the table name for Property
func (Property) TableName() string {
	return "properties"
}

// Property type constants
const (
	PropertyTypeApartment = "apartment"
	PropertyTypeHouse     = "house"
	PropertyTypeOffice    = "office"
	PropertyTypeShop      = "shop"
	PropertyTypeWarehouse = "warehouse"
)

// IsDiscarded returns true if the property is soft-deleted
func (p *Property) IsDiscarded() bool {
	return p.DiscardedAt != nil
}

// PropertyResponse is the JSON response format for properties
type PropertyResponse struct {
	ID            uint            `json:"id"`
	OwnerID       uint            `json:"owner_id"`
	OwnerName     string          `json:"owner_name,omitempty"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	PropertyType  string          `json:"property_type"`
	Rooms         int             `json:"rooms"`
	SuggestedRent decimal.Decimal `json:"suggested_rent"`
	Description   *string         `json:"description"`
	ImagePath     *string         `json:"image_path"`
	ThumbnailPath *string         `json:"thumbnail_path"`
	Available     bool            `json:"available"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToResponse converts Property to PropertyResponse
func (p *Property) ToResponse() PropertyResponse {
	resp := PropertyResponse{
		ID:            p.ID,
		OwnerID:       p.OwnerID,
		Address:       p.Address,
		City:          p.City,
		PropertyType:  p.PropertyType,
		Rooms:         p.Rooms,
		SuggestedRent: p.SuggestedRent,
		Description:   p.Description,
		ImagePath:     p.ImagePath,
		ThumbnailPath: p.ThumbnailPath,
		Available:     p.Available,
		CreatedAt:     p.CreatedAt,
	}
	if p.Owner.ID != 0 {
		resp.OwnerName = p.Owner.FullName
	}
	return resp
}
