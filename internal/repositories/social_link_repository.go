package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/djnacci/backend/internal/models"
)

// socialLinkRepository implements social link repository operations
type socialLinkRepository struct {
	db *sql.DB
}

// NewSocialLinkRepository creates a new social link repository
func NewSocialLinkRepository(db *sql.DB) *socialLinkRepository {
	return &socialLinkRepository{
		db: db,
	}
}

// GetAll retrieves all social links in the order they were first added
func (r *socialLinkRepository) GetAll(ctx context.Context) ([]models.SocialLink, error) {
	query := `
		SELECT id, platform, url
		FROM social_links
		ORDER BY created_at ASC, platform ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query social links: %w", err)
	}
	defer rows.Close()

	links := []models.SocialLink{}
	for rows.Next() {
		var link models.SocialLink
		if err := rows.Scan(&link.ID, &link.Platform, &link.URL); err != nil {
			return nil, fmt.Errorf("failed to scan social link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating social links: %w", err)
	}

	return links, nil
}

// GetByPlatform retrieves the social link of a platform
func (r *socialLinkRepository) GetByPlatform(ctx context.Context, platform string) (*models.SocialLink, error) {
	query := `
		SELECT id, platform, url
		FROM social_links
		WHERE platform = ?
		LIMIT 1
	`

	link := &models.SocialLink{}
	err := r.db.QueryRowContext(ctx, query, platform).Scan(&link.ID, &link.Platform, &link.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrSocialLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get social link by platform: %w", err)
	}

	return link, nil
}

// Upsert inserts the link or, when the platform already exists, replaces its url.
// The platform column is unique, so a platform never appears twice.
func (r *socialLinkRepository) Upsert(ctx context.Context, link *models.SocialLink) error {
	query := `
		INSERT INTO social_links (id, platform, url)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE url = VALUES(url)
	`

	if _, err := r.db.ExecContext(ctx, query, link.ID, link.Platform, link.URL); err != nil {
		return fmt.Errorf("failed to upsert social link: %w", err)
	}

	return nil
}

// CreateIfMissing inserts the link unless its platform is already present.
// Returns true when a row was inserted.
func (r *socialLinkRepository) CreateIfMissing(ctx context.Context, link *models.SocialLink) (bool, error) {
	query := `
		INSERT IGNORE INTO social_links (id, platform, url)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, link.ID, link.Platform, link.URL)
	if err != nil {
		return false, fmt.Errorf("failed to create social link: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
