package handler

import (
	"net/http"

	"backstock/internal/dto"
	"backstock/internal/service"

	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	billing service.BillingService
}

func NewBillingHandler(billing service.BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

// Create godoc
// @Summary  Create an invoice and decrement stock atomically
// @Tags     billing
// @Accept   json
// @Produce  json
// @Param    request body dto.CreateBillRequest true "Bill"
// @Success  201 {object} apierror.Envelope
// @Failure  400 {object} apierror.FailureEnvelope
// @Failure  409 {object} apierror.FailureEnvelope
// @Security BearerAuth
// @Router   /v1/bills [post]
func (h *BillingHandler) Create(c *gin.Context) {
	var req dto.CreateBillRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.billing.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Bill created", resp)
}

func (h *BillingHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.billing.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Bill retrieved", resp)
}

func (h *BillingHandler) GetByInvoiceNo(c *gin.Context) {
	resp, err := h.billing.GetByInvoiceNo(c.Request.Context(), c.Param("invoice_no"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Bill retrieved", resp)
}

func (h *BillingHandler) List(c *gin.Context) {
	var filter dto.BillFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.billing.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Bills retrieved", resp)
}

func (h *BillingHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.billing.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Bill deleted", nil)
}

// PDF godoc
// @Summary  Download the invoice as a PDF
// @Tags     billing
// @Produce  application/pdf
// @Param    id path string true "Bill id"
// @Success  200 {file} file
// @Failure  404 {object} apierror.FailureEnvelope
// @Security BearerAuth
// @Router   /v1/bills/{id}/pdf [get]
func (h *BillingHandler) PDF(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	path, err := h.billing.GeneratePDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, "invoice.pdf")
}
