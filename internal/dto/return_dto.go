package dto

import "github.com/google/uuid"

// Return type request codes, as submitted by clients.
const (
	ReturnKindVendor   = "1"
	ReturnKindCustomer = "2"
)

// SubmitReturnRequest is the tagged-variant input of the return workflow.
// ReturnType selects the variant; the invoice fields only apply to the
// customer kind. Validation is field-scoped and happens in the service, not
// via binding tags, so every failure carries an error kind.
type SubmitReturnRequest struct {
	ReturnType      string  `json:"return_type"`
	VendorProductID string  `json:"vendor_product_id"`
	ReturnQty       int     `json:"return_qty"`
	Reason          *string `json:"reason"`

	// Customer kind only.
	InvoiceNum     string  `json:"invoice_num"`
	CustomerName   *string `json:"customer_name"`
	ResolutionType *int    `json:"resolution_type"`
}

type ResolveReturnRequest struct {
	Status         int  `json:"status" validate:"required"`
	ResolutionType *int `json:"resolution_type" validate:"omitempty,oneof=1 2"`
}

type ReturnFilter struct {
	Status     int    `form:"status"`
	ReturnType int    `form:"return_type"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type ProductReturnResponse struct {
	ID              uuid.UUID  `json:"id"`
	VendorProductID uuid.UUID  `json:"vendor_product_id"`
	BillID          *uuid.UUID `json:"bill_id"`
	BillItemID      *uuid.UUID `json:"bill_item_id"`
	ReturnQty       int        `json:"return_qty"`
	ReturnType      int        `json:"return_type"`
	CustomerName    *string    `json:"customer_name"`
	ReturnReference string     `json:"return_reference"`
	ResolutionType  *int       `json:"resolution_type"`
	Status          int        `json:"status"`
	Reason          *string    `json:"reason"`
	ReturnDate      string     `json:"return_date"`

	// CustomerReturn is set only when this submission created a new customer
	// return case; merges never produce one.
	CustomerReturn *CustomerReturnResponse `json:"customer_return,omitempty"`
}

type CustomerReturnResponse struct {
	ID              uuid.UUID `json:"id"`
	ProductReturnID uuid.UUID `json:"product_return_id"`
	BillID          uuid.UUID `json:"bill_id"`
	BillItemID      uuid.UUID `json:"bill_item_id"`
	CustomerName    *string   `json:"customer_name"`
	ResolutionType  *int      `json:"resolution_type"`
	InvoiceNo       string    `json:"invoice_no"`
}

type ReturnListResponse struct {
	Returns []ProductReturnResponse `json:"returns"`
	Total   int64                   `json:"total"`
	Page    int                     `json:"page"`
	Limit   int                     `json:"limit"`
}
