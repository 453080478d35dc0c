package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill is an invoice header. Items are owned by the bill and cascade-deleted
// with it.
type Bill struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceNo    string    `gorm:"uniqueIndex;not null"`
	CustomerName *string
	NetAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Items []BillItem `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE"`
}

func (Bill) TableName() string { return "bills" }

// BillItem is one invoice line. The vendor product reference is
// delete-protected: an offer cannot be removed while any bill still points
// at it.
type BillItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	VendorProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity        int             `gorm:"not null"`
	SellingPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Bill          *Bill          `gorm:"foreignKey:BillID"`
	VendorProduct *VendorProduct `gorm:"foreignKey:VendorProductID;constraint:OnDelete:RESTRICT"`
}

func (BillItem) TableName() string { return "bill_items" }
