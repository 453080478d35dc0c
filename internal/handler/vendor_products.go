package handler

import (
	"net/http"

	"backstock/internal/dto"
	"backstock/internal/service"

	"github.com/gin-gonic/gin"
)

type VendorProductHandler struct {
	vendorProducts service.VendorProductService
}

func NewVendorProductHandler(vendorProducts service.VendorProductService) *VendorProductHandler {
	return &VendorProductHandler{vendorProducts: vendorProducts}
}

func (h *VendorProductHandler) Create(c *gin.Context) {
	var req dto.CreateVendorProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.vendorProducts.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Vendor product created", resp)
}

func (h *VendorProductHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.vendorProducts.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Vendor product retrieved", resp)
}

func (h *VendorProductHandler) List(c *gin.Context) {
	resp, err := h.vendorProducts.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Vendor products retrieved", resp)
}

func (h *VendorProductHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateVendorProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.vendorProducts.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Vendor product updated", resp)
}

func (h *VendorProductHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.vendorProducts.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Vendor product deactivated", nil)
}
