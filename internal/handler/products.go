package handler

import (
	"net/http"

	"backstock/internal/dto"
	"backstock/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	products  service.ProductService
	analytics service.AnalyticsService
}

func NewProductHandler(products service.ProductService, analytics service.AnalyticsService) *ProductHandler {
	return &ProductHandler{products: products, analytics: analytics}
}

// Create godoc
// @Summary  Create a catalog product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    request body dto.CreateProductRequest true "Product"
// @Success  201 {object} apierror.Envelope
// @Failure  400 {object} apierror.FailureEnvelope
// @Failure  409 {object} apierror.FailureEnvelope
// @Security BearerAuth
// @Router   /v1/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Product created", resp)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product retrieved", resp)
}

// List godoc
// @Summary  List products with filters, stock roll-ups and the category set
// @Tags     products
// @Produce  json
// @Param    name        query string false "Name substring filter"
// @Param    category_id query string false "Category filter"
// @Param    active      query string false "Active filter: true (default), false, all"
// @Param    page        query int    false "Page"
// @Param    limit       query int    false "Page size"
// @Success  200 {object} apierror.Envelope
// @Security BearerAuth
// @Router   /v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Products retrieved", resp)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product updated", resp)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.products.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product deactivated", nil)
}

func (h *ProductHandler) Reactivate(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.products.Reactivate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product reactivated", resp)
}

// SalesAnalysis godoc
// @Summary  Aggregate billing history for one product
// @Tags     products
// @Produce  json
// @Param    id path string true "Product id"
// @Success  200 {object} apierror.Envelope
// @Failure  404 {object} apierror.FailureEnvelope
// @Security BearerAuth
// @Router   /v1/products/{id}/sales-analysis [get]
func (h *ProductHandler) SalesAnalysis(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.analytics.SalesAnalysis(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Sales analysis computed", resp)
}

// DropdownData returns the brief product/vendor/offer lists in one payload.
func (h *ProductHandler) DropdownData(c *gin.Context) {
	resp, err := h.products.DropdownData(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Dropdown data retrieved", resp)
}
