package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/djnacci/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockBookingRepository is a mock implementation of BookingRepository
type mockBookingRepository struct {
	created   *models.BookingRequest
	bookings  []models.BookingRequest
	booking   *models.BookingRequest
	err       error
	updateErr error
	deleteErr error
	status    models.BookingStatus
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *models.BookingRequest) error {
	if m.err != nil {
		return m.err
	}
	m.created = booking
	return nil
}

func (m *mockBookingRepository) GetAll(ctx context.Context) ([]models.BookingRequest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.bookings, nil
}

func (m *mockBookingRepository) GetByID(ctx context.Context, id string) (*models.BookingRequest, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.booking == nil {
		return nil, models.ErrBookingRequestNotFound
	}
	return m.booking, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.status = status
	if m.booking != nil {
		m.booking.Status = status
	}
	return nil
}

func (m *mockBookingRepository) Delete(ctx context.Context, id string) error {
	return m.deleteErr
}

// mockNotifier records the bookings it was asked to announce
type mockNotifier struct {
	notified []*models.BookingRequest
	err      error
}

func (m *mockNotifier) NotifyBookingCreated(ctx context.Context, booking *models.BookingRequest) error {
	m.notified = append(m.notified, booking)
	return m.err
}

func TestBookingService_Create(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 18, 30, 0, 123456789, time.FixedZone("EST", -5*3600))

	tests := []struct {
		name        string
		repo        *mockBookingRepository
		notifier    *mockNotifier
		expectedErr bool
	}{
		{
			name:     "success with notification",
			repo:     &mockBookingRepository{},
			notifier: &mockNotifier{},
		},
		{
			name:     "notification failure does not fail create",
			repo:     &mockBookingRepository{},
			notifier: &mockNotifier{err: errors.New("redis down")},
		},
		{
			name: "success without notifier",
			repo: &mockBookingRepository{},
		},
		{
			name:        "repository error",
			repo:        &mockBookingRepository{err: errors.New("db down")},
			notifier:    &mockNotifier{},
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var notifier BookingNotifier
			if tt.notifier != nil {
				notifier = tt.notifier
			}
			svc := NewBookingService(tt.repo, notifier, zap.NewNop())
			svc.now = func() time.Time { return fixed }

			booking, err := svc.Create(context.Background(), &models.CreateBookingRequest{
				Name:      "Jane",
				Email:     "jane@example.com",
				Phone:     "555-0100",
				Date:      "2026-05-01",
				EventType: "wedding",
				Details:   "Evening reception for 120 guests",
			})

			if tt.expectedErr {
				assert.Error(t, err)
				assert.Nil(t, booking)
				if tt.notifier != nil {
					assert.Empty(t, tt.notifier.notified)
				}
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, booking.ID)
			assert.Equal(t, models.BookingStatusNew, booking.Status)
			assert.Equal(t, time.UTC, booking.CreatedAt.Location())
			assert.True(t, booking.CreatedAt.Equal(fixed.Truncate(time.Microsecond)))
			assert.Equal(t, "wedding", booking.EventType)
			assert.Same(t, booking, tt.repo.created)
			if tt.notifier != nil {
				require.Len(t, tt.notifier.notified, 1)
				assert.Equal(t, booking.ID, tt.notifier.notified[0].ID)
			}
		})
	}
}

func TestBookingService_GetAll(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := &mockBookingRepository{bookings: []models.BookingRequest{{ID: "b1"}, {ID: "b2"}}}
		svc := NewBookingService(repo, nil, zap.NewNop())

		bookings, err := svc.GetAll(context.Background())

		require.NoError(t, err)
		assert.Len(t, bookings, 2)
	})

	t.Run("propagates errors", func(t *testing.T) {
		svc := NewBookingService(&mockBookingRepository{err: errors.New("db down")}, nil, zap.NewNop())

		bookings, err := svc.GetAll(context.Background())

		assert.Error(t, err)
		assert.Nil(t, bookings)
	})
}

func TestBookingService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      models.BookingStatus
		repo        *mockBookingRepository
		expectedErr error
		anyErr      bool
	}{
		{
			name:   "success",
			status: models.BookingStatusReviewed,
			repo:   &mockBookingRepository{booking: &models.BookingRequest{ID: "b1", Status: models.BookingStatusNew}},
		},
		{
			name:   "arbitrary status accepted",
			status: "archived",
			repo:   &mockBookingRepository{booking: &models.BookingRequest{ID: "b1"}},
		},
		{
			name:        "empty status",
			status:      " ",
			repo:        &mockBookingRepository{},
			expectedErr: ErrStatusRequired,
		},
		{
			name:        "not found",
			status:      models.BookingStatusReviewed,
			repo:        &mockBookingRepository{updateErr: models.ErrBookingRequestNotFound},
			expectedErr: models.ErrBookingRequestNotFound,
		},
		{
			name:   "repository error",
			status: models.BookingStatusReviewed,
			repo:   &mockBookingRepository{updateErr: errors.New("db down")},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBookingService(tt.repo, nil, zap.NewNop())

			booking, err := svc.UpdateStatus(context.Background(), "b1", tt.status)

			switch {
			case tt.expectedErr != nil:
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, booking)
			case tt.anyErr:
				assert.Error(t, err)
				assert.Nil(t, booking)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.status, booking.Status)
				assert.Equal(t, tt.status, tt.repo.status)
			}
		})
	}
}

func TestBookingService_Delete(t *testing.T) {
	tests := []struct {
		name        string
		deleteErr   error
		expectedErr bool
	}{
		{name: "success"},
		{name: "unknown id succeeds", deleteErr: models.ErrBookingRequestNotFound},
		{name: "repository error", deleteErr: errors.New("db down"), expectedErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBookingService(&mockBookingRepository{deleteErr: tt.deleteErr}, nil, zap.NewNop())

			err := svc.Delete(context.Background(), "b1")

			if tt.expectedErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
