package services

import "errors"

var (
	ErrSectionRequired    = errors.New("section is required")
	ErrNoFiles            = errors.New("no files uploaded")
	ErrTooManyFiles       = errors.New("too many files")
	ErrInvalidMediaItem   = errors.New("invalid media item")
	ErrInvalidReorder     = errors.New("section and ids are required")
	ErrPlatformRequired   = errors.New("platform is required")
	ErrStatusRequired     = errors.New("status is required")
	ErrConversionFailed   = errors.New("image conversion failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginDisabled      = errors.New("password login is disabled")
)
