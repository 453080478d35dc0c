package handler

import (
	"net/http"

	"backstock/internal/apierror"
	"backstock/internal/dto"
	"backstock/internal/service"

	"github.com/gin-gonic/gin"
)

type ReturnHandler struct {
	returns service.ReturnService
}

func NewReturnHandler(returns service.ReturnService) *ReturnHandler {
	return &ReturnHandler{returns: returns}
}

// Submit godoc
// @Summary  Submit a vendor or customer product return
// @Tags     returns
// @Accept   json
// @Produce  json
// @Param    request body dto.SubmitReturnRequest true "Return"
// @Success  201 {object} apierror.Envelope
// @Failure  400 {object} apierror.FailureEnvelope
// @Failure  404 {object} apierror.FailureEnvelope
// @Security BearerAuth
// @Router   /v1/returns [post]
func (h *ReturnHandler) Submit(c *gin.Context) {
	// No binding tags here: the workflow validates field by field so every
	// failure carries its error kind.
	var req dto.SubmitReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WrapFailure("Invalid request body", map[string]string{"detail": err.Error()}))
		return
	}
	resp, err := h.returns.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Return submitted", resp)
}

// Resolve godoc
// @Summary  Resolve or reject a pending return
// @Tags     returns
// @Accept   json
// @Produce  json
// @Param    id      path string                   true "Return id"
// @Param    request body dto.ResolveReturnRequest true "Resolution"
// @Success  200 {object} apierror.Envelope
// @Failure  409 {object} apierror.FailureEnvelope
// @Security BearerAuth
// @Router   /v1/returns/{id}/resolve [post]
func (h *ReturnHandler) Resolve(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ResolveReturnRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.returns.Resolve(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Return resolved", resp)
}

// List godoc
// @Summary  List product returns
// @Tags     returns
// @Produce  json
// @Param    status      query int false "Status filter: 1 pending, 2 resolved, 3 rejected"
// @Param    return_type query int false "Type filter: 1 sold, 2 not sold"
// @Param    page        query int false "Page"
// @Param    limit       query int false "Page size"
// @Success  200 {object} apierror.Envelope
// @Security BearerAuth
// @Router   /v1/returns [get]
func (h *ReturnHandler) List(c *gin.Context) {
	var filter dto.ReturnFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.returns.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Returns retrieved", resp)
}
