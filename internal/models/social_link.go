package models

import "errors"

var ErrSocialLinkNotFound = errors.New("social link not found")

// SocialLink represents a link to one of the artist's social profiles
type SocialLink struct {
	ID       string `json:"id" yaml:"-"`
	Platform string `json:"platform" yaml:"platform"`
	URL      string `json:"url" yaml:"url"`
}

// UpsertSocialLinkRequest represents a request to set the URL of a platform
type UpsertSocialLinkRequest struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}
