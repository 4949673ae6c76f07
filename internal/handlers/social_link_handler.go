package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/djnacci/backend/internal/models"
	"github.com/djnacci/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SocialLinkService is the interface that wraps methods for social link business logic
type SocialLinkService interface {
	// Method GetAll retrieve all social links.
	GetAll(ctx context.Context) ([]models.SocialLink, error)
	// Method Upsert set the url of a platform, creating the link when missing.
	//
	// services.ErrPlatformRequired is returned for an empty platform.
	Upsert(ctx context.Context, req *models.UpsertSocialLinkRequest) (*models.SocialLink, error)
}

// SocialLinkHandler handles social link HTTP requests
type SocialLinkHandler struct {
	BaseHandler
	service SocialLinkService
	authMw  func(http.Handler) http.Handler
}

// NewSocialLinkHandler creates a new social link handler
func NewSocialLinkHandler(svc SocialLinkService, logger *zap.Logger, authMw func(http.Handler) http.Handler) *SocialLinkHandler {
	return &SocialLinkHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
		authMw:      authMw,
	}
}

// RegisterRoutes registers all social link handler routes
func (h *SocialLinkHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/social-links", func(r chi.Router) {
		r.Get("/", h.GetAll)

		r.Group(func(r chi.Router) {
			if h.authMw != nil {
				r.Use(h.authMw)
			}
			r.Post("/", h.Upsert)
		})
	})
}

// GetAll handles GET /api/social-links
// @Summary List social links
// @Tags social-links
// @Produce json
// @Success 200 {array} models.SocialLink
// @Failure 500 {object} map[string]string
// @Router /api/social-links [get]
func (h *SocialLinkHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	links, err := h.service.GetAll(r.Context())
	if err != nil {
		h.RespondInternalError(w, r, "failed to get social links", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, links)
}

// Upsert handles POST /api/social-links
// @Summary Set a social link
// @Description Insert the link of a platform or replace its url
// @Tags social-links
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpsertSocialLinkRequest true "Platform and url"
// @Success 200 {object} models.SocialLink
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/social-links [post]
func (h *SocialLinkHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req models.UpsertSocialLinkRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	link, err := h.service.Upsert(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrPlatformRequired) {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.RespondInternalError(w, r, "failed to save social link", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, link)
}
