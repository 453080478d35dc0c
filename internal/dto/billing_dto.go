package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BillItemRequest struct {
	VendorProductID string          `json:"vendor_product_id" validate:"required,uuid"`
	Quantity        int             `json:"quantity"          validate:"required,gt=0"`
	SellingPrice    decimal.Decimal `json:"selling_price"     validate:"required"`
}

type CreateBillRequest struct {
	// InvoiceNo is generated server-side when empty.
	InvoiceNo    string            `json:"invoice_no" validate:"omitempty,max=50"`
	CustomerName *string           `json:"customer_name"`
	Discount     decimal.Decimal   `json:"discount"`
	Items        []BillItemRequest `json:"items" validate:"required,min=1,dive"`
}

type BillFilter struct {
	InvoiceNo string `form:"invoice_no"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type BillItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	VendorProductID uuid.UUID       `json:"vendor_product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

type BillResponse struct {
	ID           uuid.UUID          `json:"id"`
	InvoiceNo    string             `json:"invoice_no"`
	CustomerName *string            `json:"customer_name"`
	NetAmount    decimal.Decimal    `json:"net_amount"`
	Discount     decimal.Decimal    `json:"discount"`
	TotalAmount  decimal.Decimal    `json:"total_amount"`
	Items        []BillItemResponse `json:"items"`
	CreatedAt    string             `json:"created_at"`
}

type BillListResponse struct {
	Bills []BillResponse `json:"bills"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
