package dto

import "github.com/google/uuid"

// ─── Categories ──────────────────────────────────────────────────────────────

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description *string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=120"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
}

// ─── Vendors ─────────────────────────────────────────────────────────────────

type CreateVendorRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=150"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Address *string `json:"address"`
}

type UpdateVendorRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=150"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Address *string `json:"address"`
}

type VendorResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Phone    *string   `json:"phone"`
	Email    *string   `json:"email"`
	Address  *string   `json:"address"`
	IsActive bool      `json:"is_active"`
}

// ─── Dropdown data ───────────────────────────────────────────────────────────

// BriefItem exposes only id and name to keep dropdown payloads small.
type BriefItem struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type DropdownDataResponse struct {
	Products       []BriefItem `json:"products"`
	Vendors        []BriefItem `json:"vendors"`
	VendorProducts []BriefItem `json:"vendor_products"`
}
