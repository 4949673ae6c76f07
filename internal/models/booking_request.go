package models

import (
	"errors"
	"time"
)

// BookingStatus represents the review state of a booking request
type BookingStatus string

const (
	BookingStatusNew      BookingStatus = "new"
	BookingStatusReviewed BookingStatus = "reviewed"
)

var ErrBookingRequestNotFound = errors.New("booking request not found")

// BookingRequest represents an inquiry submitted from the public booking form
type BookingRequest struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Date      string        `json:"date"`
	EventType string        `json:"eventType"`
	Details   string        `json:"details"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// CreateBookingRequest represents the public booking form payload.
// Status and creation time are always assigned by the server.
type CreateBookingRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Date      string `json:"date"`
	EventType string `json:"eventType"`
	Details   string `json:"details"`
}

// UpdateBookingStatusRequest represents a status change made by the admin
type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status"`
}
