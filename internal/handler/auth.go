package handler

import (
	"errors"
	"net/http"

	"backstock/internal/apierror"
	"backstock/internal/dto"
	"backstock/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary  Authenticate and obtain a token pair
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body dto.LoginRequest true "Credentials"
// @Success  200 {object} apierror.Envelope
// @Failure  401 {object} apierror.FailureEnvelope
// @Router   /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, apierror.WrapFailure("Unauthorized", map[string]string{"detail": "Invalid username or password."}))
			return
		}
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", resp)
}

// Refresh godoc
// @Summary  Exchange a refresh token for a new token pair
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body dto.RefreshRequest true "Refresh token"
// @Success  200 {object} apierror.Envelope
// @Failure  401 {object} apierror.FailureEnvelope
// @Router   /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.auth.Refresh(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, apierror.WrapFailure("Unauthorized", map[string]string{"detail": "Token is invalid or expired."}))
			return
		}
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Token refreshed", resp)
}
