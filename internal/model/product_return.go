package model

import (
	"time"

	"github.com/google/uuid"
)

// Return type codes on ProductReturn: whether the returned units were sold to
// a customer (customer-return flow) or never left the shop (vendor return).
const (
	ReturnTypeSold    = 1
	ReturnTypeNotSold = 2
)

// Resolution type codes.
const (
	ResolutionRefund      = 1
	ResolutionReplacement = 2
)

// Return status codes. A ProductReturn is never hard-deleted; it moves
// Pending → Resolved or Pending → Rejected.
type ReturnStatus = int

const (
	ReturnStatusPending  = 1
	ReturnStatusResolved = 2
	ReturnStatusRejected = 3
)

// ProductReturn is a return case against a vendor product. At most one
// Pending row exists per vendor product: new requests merge their quantity
// into it instead of creating a duplicate.
type ProductReturn struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendorProductID uuid.UUID  `gorm:"type:uuid;not null;index"`
	BillID          *uuid.UUID `gorm:"type:uuid;index"`
	BillItemID      *uuid.UUID `gorm:"type:uuid"`
	ReturnQty       int        `gorm:"not null"`
	ReturnType      int        `gorm:"not null"`
	CustomerName    *string
	ReturnReference string `gorm:"uniqueIndex;not null"`
	ResolutionType  *int
	Status          int `gorm:"not null;default:1"`
	Reason          *string
	ReturnDate      time.Time `gorm:"autoCreateTime"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	VendorProduct *VendorProduct `gorm:"foreignKey:VendorProductID;constraint:OnDelete:RESTRICT"`
	Bill          *Bill          `gorm:"foreignKey:BillID;constraint:OnDelete:SET NULL"`
	BillItem      *BillItem      `gorm:"foreignKey:BillItemID;constraint:OnDelete:SET NULL"`
}

func (ProductReturn) TableName() string { return "product_returns" }

// CustomerProductReturn links a newly created customer return to the invoice
// it originated from. Merges into an existing Pending return do not create
// this linkage — only the quantity accumulates.
type CustomerProductReturn struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductReturnID uuid.UUID `gorm:"type:uuid;not null;index"`
	BillID          uuid.UUID `gorm:"type:uuid;not null"`
	BillItemID      uuid.UUID `gorm:"type:uuid;not null"`
	CustomerName    *string
	ResolutionType  *int
	InvoiceNo       string `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	ProductReturn *ProductReturn `gorm:"foreignKey:ProductReturnID"`
	Bill          *Bill          `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE"`
	BillItem      *BillItem      `gorm:"foreignKey:BillItemID;constraint:OnDelete:CASCADE"`
}

func (CustomerProductReturn) TableName() string { return "customer_product_returns" }
