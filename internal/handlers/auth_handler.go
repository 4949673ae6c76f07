package handlers

import (
	"errors"
	"net/http"

	"github.com/djnacci/backend/internal/models"
	"github.com/djnacci/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps admin authentication
type AuthService interface {
	// Method Login verify the admin credentials and issue an access token.
	//
	// services.ErrInvalidCredentials is returned on a username or password mismatch and
	// services.ErrLoginDisabled when no password is configured.
	Login(req *models.LoginRequest) (*models.LoginResponse, error)
}

// AuthHandler handles admin login
type AuthHandler struct {
	BaseHandler
	service AuthService
	loginMw func(http.Handler) http.Handler
}

// NewAuthHandler creates a new auth handler. loginMw wraps the login route.
func NewAuthHandler(svc AuthService, logger *zap.Logger, loginMw func(http.Handler) http.Handler) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
		loginMw:     loginMw,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.loginMw != nil {
			r.Use(h.loginMw)
		}
		r.Post("/api/auth/login", h.Login)
	})
}

// Login handles POST /api/auth/login
// @Summary Admin login
// @Description Exchange the admin credentials for a bearer access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			h.RespondError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, services.ErrLoginDisabled):
			h.RespondError(w, http.StatusForbidden, err.Error())
		default:
			h.RespondInternalError(w, r, "failed to log in", err)
		}
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}
