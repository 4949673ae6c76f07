package models

import (
	"errors"
	"io"
)

// MediaType represents the kind of content a media item holds
type MediaType string

const (
	MediaTypeImage   MediaType = "image"
	MediaTypeVideo   MediaType = "video"
	MediaTypeYouTube MediaType = "youtube"
)

// Well-known sections of the public site. Sections are free-form strings,
// these are only the ones the site renders.
const (
	SectionHero    = "hero"
	SectionAbout   = "about"
	SectionGallery = "gallery"
)

// Defaults applied to uploaded items
const (
	DefaultDuration       = 5
	DefaultVideoStartTime = 0
	DefaultVideoEndTime   = 15
)

var (
	ErrMediaItemNotFound = errors.New("media item not found")
	ErrMediaFileNotFound = errors.New("media file not found")
)

// MediaItem represents a media item shown in one section of the site.
// Raw bytes are never part of this struct, see MediaFile.
type MediaItem struct {
	ID             string    `json:"id"`
	Section        string    `json:"section"`
	Type           MediaType `json:"type"`
	URL            string    `json:"url"`
	Title          *string   `json:"title"`
	Duration       int       `json:"duration"`
	VideoStartTime *int      `json:"videoStartTime"`
	VideoEndTime   *int      `json:"videoEndTime"`
	Position       int       `json:"position"`
	MimeType       string    `json:"mimeType,omitempty"`
}

// MediaFile holds the stored payload location of a media item.
// Exactly one of Data or FilePath is set depending on the storage mode.
type MediaFile struct {
	ID       string
	MimeType string
	Data     []byte
	FilePath string
}

// NewMediaItem is a media item together with its payload, used on insert
type NewMediaItem struct {
	MediaItem
	FileData []byte
	FilePath string
}

// CreateMediaItemRequest represents a request to insert a media item directly (e.g. a YouTube link)
type CreateMediaItemRequest struct {
	Section        string    `json:"section"`
	Type           MediaType `json:"type"`
	URL            string    `json:"url"`
	Title          *string   `json:"title,omitempty"`
	Duration       *int      `json:"duration,omitempty"`
	VideoStartTime *int      `json:"videoStartTime,omitempty"`
	VideoEndTime   *int      `json:"videoEndTime,omitempty"`
	Position       *int      `json:"position,omitempty"`
}

// UpdateMediaItemRequest represents a partial update of a media item.
// Nil fields are left untouched.
type UpdateMediaItemRequest struct {
	Section        *string    `json:"section,omitempty"`
	Type           *MediaType `json:"type,omitempty"`
	URL            *string    `json:"url,omitempty"`
	Title          *string    `json:"title,omitempty"`
	Duration       *int       `json:"duration,omitempty"`
	VideoStartTime *int       `json:"videoStartTime,omitempty"`
	VideoEndTime   *int       `json:"videoEndTime,omitempty"`
	Position       *int       `json:"position,omitempty"`
}

// IsEmpty reports whether the request carries no field at all
func (r *UpdateMediaItemRequest) IsEmpty() bool {
	return r.Section == nil && r.Type == nil && r.URL == nil && r.Title == nil &&
		r.Duration == nil && r.VideoStartTime == nil && r.VideoEndTime == nil && r.Position == nil
}

// ReorderMediaRequest represents a request to rewrite positions of a section
type ReorderMediaRequest struct {
	Section string   `json:"section"`
	IDs     []string `json:"ids"`
}

// PlaylistEntry is a media item together with the time it stays on screen
type PlaylistEntry struct {
	MediaItem
	DisplayMs int64 `json:"displayMs"`
}

// UploadedFile is one file of a multipart upload
type UploadedFile struct {
	Filename string
	MimeType string
	Data     []byte
}

// FileContent is a readable media payload.
// Body also implements io.Seeker when the payload supports range requests.
type FileContent struct {
	MimeType string
	Body     io.ReadCloser
}
