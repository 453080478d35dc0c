package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Products ────────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name       string  `json:"name"        validate:"required,min=2,max=255"`
	CategoryID string  `json:"category_id" validate:"required,uuid"`
	ImageURL   *string `json:"image_url"`
}

type UpdateProductRequest struct {
	Name       *string `json:"name"        validate:"omitempty,min=2,max=255"`
	CategoryID *string `json:"category_id" validate:"omitempty,uuid"`
	ImageURL   *string `json:"image_url"`
}

type ProductFilter struct {
	Name       string `form:"name"`
	CategoryID string `form:"category_id"`
	Active     string `form:"active"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type ProductResponse struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Category *BriefItem `json:"category"`
	ImageURL *string    `json:"image_url"`
	// StockCount is the sum of stock across the product's active vendor
	// offers; 0 when it has none.
	StockCount     int                     `json:"stock_count"`
	IsActive       bool                    `json:"is_active"`
	VendorProducts []VendorProductResponse `json:"vendor_products"`
	CreatedAt      string                  `json:"created_at"`
}

type ProductListResponse struct {
	Products   []ProductResponse  `json:"products"`
	Categories []CategoryResponse `json:"categories"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// ─── Vendor products ─────────────────────────────────────────────────────────

type CreateVendorProductRequest struct {
	ProductID  string          `json:"product_id"  validate:"required,uuid"`
	VendorID   string          `json:"vendor_id"   validate:"required,uuid"`
	VendorCode string          `json:"vendor_code" validate:"required,max=100"`
	Price      decimal.Decimal `json:"price"       validate:"required"`
	Cost       decimal.Decimal `json:"cost"        validate:"required"`
	Stock      *int            `json:"stock"       validate:"omitempty,min=0"`
}

type UpdateVendorProductRequest struct {
	VendorCode *string          `json:"vendor_code" validate:"omitempty,max=100"`
	Price      *decimal.Decimal `json:"price"`
	Cost       *decimal.Decimal `json:"cost"`
	Stock      *int             `json:"stock" validate:"omitempty,min=0"`
}

type VendorProductResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Vendor     *BriefItem      `json:"vendor"`
	VendorCode string          `json:"vendor_code"`
	Price      decimal.Decimal `json:"price"`
	Cost       decimal.Decimal `json:"cost"`
	Stock      *int            `json:"stock"`
	IsActive   bool            `json:"is_active"`
}

// ─── Sales analysis ──────────────────────────────────────────────────────────

// SalesAnalysisResponse aggregates a product's billing history. Every field
// defaults to zero when no bill items match — never null.
type SalesAnalysisResponse struct {
	ProductID      uuid.UUID       `json:"product_id"`
	TotalSales     int64           `json:"total_sales"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	ThisMonthSales int64           `json:"this_month_sales"`
	Last2DaySales  int64           `json:"last_2day_sales"`
}
