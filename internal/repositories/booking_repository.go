package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/djnacci/backend/internal/models"
)

// bookingRepository implements booking request repository operations
type bookingRepository struct {
	db *sql.DB
}

// NewBookingRepository creates a new booking request repository
func NewBookingRepository(db *sql.DB) *bookingRepository {
	return &bookingRepository{
		db: db,
	}
}

const bookingColumns = `id, name, email, phone, date, event_type, details, status, created_at`

func scanBooking(row rowScanner) (*models.BookingRequest, error) {
	b := &models.BookingRequest{}
	if err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Email,
		&b.Phone,
		&b.Date,
		&b.EventType,
		&b.Details,
		&b.Status,
		&b.CreatedAt,
	); err != nil {
		return nil, err
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

// Create inserts a new booking request
func (r *bookingRepository) Create(ctx context.Context, b *models.BookingRequest) error {
	query := `
		INSERT INTO booking_requests (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		b.ID,
		b.Name,
		b.Email,
		b.Phone,
		b.Date,
		b.EventType,
		b.Details,
		b.Status,
		b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking request: %w", err)
	}

	return nil
}

// GetAll retrieves all booking requests, oldest first
func (r *bookingRepository) GetAll(ctx context.Context) ([]models.BookingRequest, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM booking_requests
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query booking requests: %w", err)
	}
	defer rows.Close()

	bookings := []models.BookingRequest{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking request: %w", err)
		}
		bookings = append(bookings, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking requests: %w", err)
	}

	return bookings, nil
}

// GetByID retrieves a booking request by ID
func (r *bookingRepository) GetByID(ctx context.Context, id string) (*models.BookingRequest, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM booking_requests
		WHERE id = ?
		LIMIT 1
	`

	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrBookingRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking request by id: %w", err)
	}

	return b, nil
}

// UpdateStatus sets the status of a booking request
func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE booking_requests SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update booking request status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrBookingRequestNotFound
	}

	return nil
}

// Delete removes a booking request
func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM booking_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrBookingRequestNotFound
	}

	return nil
}
