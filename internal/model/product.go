package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item. The (category, name) pair is unique among active
// products; the check lives in the product service so reactivation of an old
// row never trips a DB constraint.
type Product struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `gorm:"index;not null"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index"`
	ImageURL   *string
	IsActive   bool `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Category       *Category       `gorm:"foreignKey:CategoryID"`
	VendorProducts []VendorProduct `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string { return "products" }

// VendorProduct is one vendor's sellable offer of a product: its own SKU,
// price, cost, and stock level. Stock is nullable — nil means the level is
// unknown, and the return workflow refuses to draw against it.
type VendorProduct struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	VendorID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	VendorCode string          `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Cost       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock      *int
	IsActive   bool `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	Vendor  *Vendor  `gorm:"foreignKey:VendorID"`
}

func (VendorProduct) TableName() string { return "vendor_products" }
