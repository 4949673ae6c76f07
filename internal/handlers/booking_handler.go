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

// BookingService is the interface that wraps methods for booking request business logic
type BookingService interface {
	// Method Create store a booking request from the public form.
	//
	// The status is always "new" and the creation time is assigned by the server.
	Create(ctx context.Context, req *models.CreateBookingRequest) (*models.BookingRequest, error)
	// Method GetAll retrieve all booking requests, oldest first.
	GetAll(ctx context.Context) ([]models.BookingRequest, error)
	// Method UpdateStatus change the status of a booking request and return the updated record.
	//
	// services.ErrStatusRequired is returned for an empty status and
	// models.ErrBookingRequestNotFound for an unknown id.
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) (*models.BookingRequest, error)
	// Method Delete remove a booking request. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
}

// BookingHandler handles booking request HTTP requests
type BookingHandler struct {
	BaseHandler
	service  BookingService
	authMw   func(http.Handler) http.Handler
	createMw func(http.Handler) http.Handler
}

// NewBookingHandler creates a new booking handler.
// createMw wraps the public create route, typically with a tighter rate limit.
func NewBookingHandler(svc BookingService, logger *zap.Logger, authMw, createMw func(http.Handler) http.Handler) *BookingHandler {
	return &BookingHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
		authMw:      authMw,
		createMw:    createMw,
	}
}

// RegisterRoutes registers all booking handler routes
func (h *BookingHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/booking-requests", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if h.createMw != nil {
				r.Use(h.createMw)
			}
			r.Post("/", h.Create)
		})

		r.Group(func(r chi.Router) {
			if h.authMw != nil {
				r.Use(h.authMw)
			}
			r.Get("/", h.GetAll)
			r.Patch("/{id}", h.UpdateStatus)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Create handles POST /api/booking-requests
// @Summary Submit a booking request
// @Description Store a booking inquiry from the public form. Status and createdAt in the body are ignored.
// @Tags booking-requests
// @Accept json
// @Produce json
// @Param request body models.CreateBookingRequest true "Booking request"
// @Success 201 {object} models.BookingRequest
// @Failure 400 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/booking-requests [post]
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBookingRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.RespondInternalError(w, r, "failed to create booking request", err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, booking)
}

// GetAll handles GET /api/booking-requests
// @Summary List booking requests
// @Description Get all booking requests ordered by creation time, oldest first
// @Tags booking-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.BookingRequest
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/booking-requests [get]
func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.GetAll(r.Context())
	if err != nil {
		h.RespondInternalError(w, r, "failed to get booking requests", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, bookings)
}

// UpdateStatus handles PATCH /api/booking-requests/{id}
// @Summary Update booking status
// @Tags booking-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking request ID"
// @Param request body models.UpdateBookingStatusRequest true "New status"
// @Success 200 {object} models.BookingRequest
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/booking-requests/{id} [patch]
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateBookingStatusRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStatusRequired):
			h.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, models.ErrBookingRequestNotFound):
			h.RespondError(w, http.StatusNotFound, "booking request not found")
		default:
			h.RespondInternalError(w, r, "failed to update booking request", err)
		}
		return
	}

	h.RespondJSON(w, http.StatusOK, booking)
}

// Delete handles DELETE /api/booking-requests/{id}
// @Summary Delete booking request
// @Description Deleting an unknown id succeeds
// @Tags booking-requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking request ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/booking-requests/{id} [delete]
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.RespondInternalError(w, r, "failed to delete booking request", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}
