package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/djnacci/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SocialLinkRepository is the interface that wraps methods for social_links table data access
type SocialLinkRepository interface {
	// Method GetAll retrieve all social links.
	GetAll(ctx context.Context) ([]models.SocialLink, error)
	// Method GetByPlatform retrieve the link of "platform".
	//
	// If no link exists for the platform, models.ErrSocialLinkNotFound is returned.
	GetByPlatform(ctx context.Context, platform string) (*models.SocialLink, error)
	// Method Upsert insert the link or replace the url of the existing link of the same platform.
	//
	// The ID of "link" is only used on insert.
	Upsert(ctx context.Context, link *models.SocialLink) error
	// Method CreateIfMissing insert the link unless its platform already exists.
	//
	// Returns true when a row was inserted.
	CreateIfMissing(ctx context.Context, link *models.SocialLink) (bool, error)
}

type socialLinkService struct {
	repo   SocialLinkRepository
	logger *zap.Logger
}

// NewSocialLinkService creates a new social link service
func NewSocialLinkService(repo SocialLinkRepository, logger *zap.Logger) *socialLinkService {
	return &socialLinkService{
		repo:   repo,
		logger: logger,
	}
}

// GetAll retrieves all social links
func (s *socialLinkService) GetAll(ctx context.Context) ([]models.SocialLink, error) {
	links, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get social links", zap.Error(err))
		return nil, fmt.Errorf("failed to get social links: %w", err)
	}

	return links, nil
}

// Upsert sets the url of a platform, creating the link when missing
func (s *socialLinkService) Upsert(ctx context.Context, req *models.UpsertSocialLinkRequest) (*models.SocialLink, error) {
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if platform == "" {
		return nil, ErrPlatformRequired
	}

	link := &models.SocialLink{
		ID:       uuid.New().String(),
		Platform: platform,
		URL:      strings.TrimSpace(req.URL),
	}
	if err := s.repo.Upsert(ctx, link); err != nil {
		s.logger.Error("failed to upsert social link", zap.String("platform", platform), zap.Error(err))
		return nil, fmt.Errorf("failed to upsert social link: %w", err)
	}

	stored, err := s.repo.GetByPlatform(ctx, platform)
	if err != nil {
		s.logger.Error("failed to get social link", zap.String("platform", platform), zap.Error(err))
		return nil, fmt.Errorf("failed to get social link: %w", err)
	}

	return stored, nil
}

// SeedDefaults creates the given links for platforms that have none yet.
// Existing links are never overwritten.
func (s *socialLinkService) SeedDefaults(ctx context.Context, defaults []models.SocialLink) (int, error) {
	created := 0
	for _, d := range defaults {
		platform := strings.ToLower(strings.TrimSpace(d.Platform))
		if platform == "" {
			continue
		}

		inserted, err := s.repo.CreateIfMissing(ctx, &models.SocialLink{
			ID:       uuid.New().String(),
			Platform: platform,
			URL:      d.URL,
		})
		if err != nil {
			return created, fmt.Errorf("failed to seed social link %s: %w", platform, err)
		}
		if inserted {
			created++
		}
	}

	if created > 0 {
		s.logger.Info("seeded default social links", zap.Int("count", created))
	}
	return created, nil
}
