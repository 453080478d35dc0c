package model

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a supplier whose offers of catalog products are tracked as
// VendorProduct rows.
type Vendor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"index;not null"`
	Phone     *string
	Email     *string
	Address   *string
	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Vendor) TableName() string { return "vendors" }
