// Package seed loads default content applied at startup
package seed

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/djnacci/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// SocialLinksFile is the layout of the social links seed file
type SocialLinksFile struct {
	SocialLinks []models.SocialLink `yaml:"social_links"`
}

// LoadSocialLinks reads default social links from a YAML file.
// A missing file yields no links and no error.
func LoadSocialLinks(path string) ([]models.SocialLink, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	return ParseSocialLinks(data)
}

// ParseSocialLinks decodes the social links seed document
func ParseSocialLinks(data []byte) ([]models.SocialLink, error) {
	var file SocialLinksFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, link := range file.SocialLinks {
		if link.Platform == "" {
			return nil, fmt.Errorf("social link %d: platform is required", i)
		}
	}

	return file.SocialLinks, nil
}
