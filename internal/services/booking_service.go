package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/djnacci/backend/internal/metrics"
	"github.com/djnacci/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingRepository is the interface that wraps methods for booking_requests table data access
type BookingRepository interface {
	// Method Create insert a booking request.
	//
	// "booking" parameter must carry its ID, status and creation time.
	Create(ctx context.Context, booking *models.BookingRequest) error
	// Method GetAll retrieve all booking requests ordered by creation time, oldest first.
	GetAll(ctx context.Context) ([]models.BookingRequest, error)
	// Method GetByID retrieve a booking request by its ID.
	//
	// If the request does not exist, models.ErrBookingRequestNotFound is returned.
	GetByID(ctx context.Context, id string) (*models.BookingRequest, error)
	// Method UpdateStatus set the review status of a booking request.
	//
	// Please reference GetByID method for information about error values.
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
	// Method Delete remove a booking request.
	//
	// Please reference GetByID method for information about error values.
	Delete(ctx context.Context, id string) error
}

// BookingNotifier is the interface that wraps the announcement of new booking requests
type BookingNotifier interface {
	// Method NotifyBookingCreated schedule a notification about "booking".
	//
	// Delivery happens asynchronously; an error only means the notification could not be scheduled.
	NotifyBookingCreated(ctx context.Context, booking *models.BookingRequest) error
}

type bookingService struct {
	repo     BookingRepository
	notifier BookingNotifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService creates a new booking service.
// A nil notifier disables booking notifications.
func NewBookingService(repo BookingRepository, notifier BookingNotifier, logger *zap.Logger) *bookingService {
	return &bookingService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stores a booking request submitted from the public form.
//
// Status is always "new" and the creation time is assigned here.
func (s *bookingService) Create(ctx context.Context, req *models.CreateBookingRequest) (*models.BookingRequest, error) {
	booking := &models.BookingRequest{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Date:      req.Date,
		EventType: req.EventType,
		Details:   req.Details,
		Status:    models.BookingStatusNew,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.logger.Error("failed to create booking request", zap.Error(err))
		return nil, fmt.Errorf("failed to create booking request: %w", err)
	}
	metrics.BookingRequestsTotal.Inc()

	if s.notifier != nil {
		if err := s.notifier.NotifyBookingCreated(ctx, booking); err != nil {
			s.logger.Warn("failed to schedule booking notification",
				zap.String("booking_id", booking.ID),
				zap.Error(err),
			)
		}
	}

	return booking, nil
}

// GetAll retrieves all booking requests, oldest first
func (s *bookingService) GetAll(ctx context.Context) ([]models.BookingRequest, error) {
	bookings, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get booking requests", zap.Error(err))
		return nil, fmt.Errorf("failed to get booking requests: %w", err)
	}

	return bookings, nil
}

// UpdateStatus changes the status of a booking request and returns the updated record
func (s *bookingService) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) (*models.BookingRequest, error) {
	status = models.BookingStatus(strings.TrimSpace(string(status)))
	if status == "" {
		return nil, ErrStatusRequired
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, models.ErrBookingRequestNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update booking status", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrBookingRequestNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get booking request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get booking request: %w", err)
	}

	return booking, nil
}

// Delete removes a booking request. Deleting an unknown id succeeds.
func (s *bookingService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil && !errors.Is(err, models.ErrBookingRequestNotFound) {
		s.logger.Error("failed to delete booking request", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete booking request: %w", err)
	}

	return nil
}
