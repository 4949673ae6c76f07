package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/djnacci/backend/internal/models"
)

// mediaRepository implements media item repository operations
type mediaRepository struct {
	db *sql.DB
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *sql.DB) *mediaRepository {
	return &mediaRepository{
		db: db,
	}
}

const mediaItemColumns = `id, section, type, url, title, duration, video_start_time, video_end_time, position, mime_type`

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMediaItem(row rowScanner) (*models.MediaItem, error) {
	var (
		item      models.MediaItem
		title     sql.NullString
		startTime sql.NullInt64
		endTime   sql.NullInt64
		mimeType  sql.NullString
	)

	if err := row.Scan(
		&item.ID,
		&item.Section,
		&item.Type,
		&item.URL,
		&title,
		&item.Duration,
		&startTime,
		&endTime,
		&item.Position,
		&mimeType,
	); err != nil {
		return nil, err
	}

	if title.Valid {
		item.Title = &title.String
	}
	if startTime.Valid {
		v := int(startTime.Int64)
		item.VideoStartTime = &v
	}
	if endTime.Valid {
		v := int(endTime.Int64)
		item.VideoEndTime = &v
	}
	item.MimeType = mimeType.String

	return &item, nil
}

// GetBySection retrieves all media items of a section ordered by position.
// Items sharing a position keep their insertion order.
func (r *mediaRepository) GetBySection(ctx context.Context, section string) ([]models.MediaItem, error) {
	query := `
		SELECT ` + mediaItemColumns + `
		FROM media_items
		WHERE section = ?
		ORDER BY position ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, section)
	if err != nil {
		return nil, fmt.Errorf("failed to query media items: %w", err)
	}
	defer rows.Close()

	items := []models.MediaItem{}
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media items: %w", err)
	}

	return items, nil
}

// GetByID retrieves a media item by ID
func (r *mediaRepository) GetByID(ctx context.Context, id string) (*models.MediaItem, error) {
	query := `
		SELECT ` + mediaItemColumns + `
		FROM media_items
		WHERE id = ?
		LIMIT 1
	`

	item, err := scanMediaItem(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrMediaItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media item by id: %w", err)
	}

	return item, nil
}

// GetFile retrieves the stored payload location of a media item
func (r *mediaRepository) GetFile(ctx context.Context, id string) (*models.MediaFile, error) {
	query := `
		SELECT mime_type, file_data, file_path
		FROM media_items
		WHERE id = ?
		LIMIT 1
	`

	var (
		mimeType sql.NullString
		filePath sql.NullString
	)
	file := &models.MediaFile{ID: id}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&mimeType, &file.Data, &filePath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrMediaItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media file: %w", err)
	}

	file.MimeType = mimeType.String
	file.FilePath = filePath.String
	return file, nil
}

// Create inserts a new media item together with its payload
func (r *mediaRepository) Create(ctx context.Context, item *models.NewMediaItem) error {
	query := `
		INSERT INTO media_items
		(id, section, type, url, title, duration, video_start_time, video_end_time, position, mime_type, file_data, file_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Section,
		item.Type,
		item.URL,
		item.Title,
		item.Duration,
		item.VideoStartTime,
		item.VideoEndTime,
		item.Position,
		nullString(item.MimeType),
		item.FileData,
		nullString(item.FilePath),
	)
	if err != nil {
		return fmt.Errorf("failed to create media item: %w", err)
	}

	return nil
}

// Update applies a partial update to a media item.
// Only non-nil fields of the request are written.
func (r *mediaRepository) Update(ctx context.Context, id string, req *models.UpdateMediaItemRequest) error {
	var setParts []string
	var args []any

	if req.Section != nil {
		setParts = append(setParts, "section = ?")
		args = append(args, *req.Section)
	}
	if req.Type != nil {
		setParts = append(setParts, "type = ?")
		args = append(args, *req.Type)
	}
	if req.URL != nil {
		setParts = append(setParts, "url = ?")
		args = append(args, *req.URL)
	}
	if req.Title != nil {
		setParts = append(setParts, "title = ?")
		args = append(args, *req.Title)
	}
	if req.Duration != nil {
		setParts = append(setParts, "duration = ?")
		args = append(args, *req.Duration)
	}
	if req.VideoStartTime != nil {
		setParts = append(setParts, "video_start_time = ?")
		args = append(args, *req.VideoStartTime)
	}
	if req.VideoEndTime != nil {
		setParts = append(setParts, "video_end_time = ?")
		args = append(args, *req.VideoEndTime)
	}
	if req.Position != nil {
		setParts = append(setParts, "position = ?")
		args = append(args, *req.Position)
	}

	if len(setParts) == 0 {
		return fmt.Errorf("no fields to update")
	}

	query := fmt.Sprintf(`
		UPDATE media_items
		SET %s
		WHERE id = ?
	`, strings.Join(setParts, ", "))

	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update media item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrMediaItemNotFound
	}

	return nil
}

// Delete removes a media item and returns the storage key of its payload,
// empty when the bytes were stored inline
func (r *mediaRepository) Delete(ctx context.Context, id string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var filePath sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT file_path FROM media_items WHERE id = ? FOR UPDATE`, id).Scan(&filePath)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrMediaItemNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to lock media item: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM media_items WHERE id = ?`, id); err != nil {
		return "", fmt.Errorf("failed to delete media item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return filePath.String, nil
}

// NextPosition returns the position a new item appended to the section gets:
// one past the current maximum, or 0 for an empty section
func (r *mediaRepository) NextPosition(ctx context.Context, section string) (int, error) {
	query := `SELECT COALESCE(MAX(position), -1) + 1 FROM media_items WHERE section = ?`

	var next int
	if err := r.db.QueryRowContext(ctx, query, section).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to get next position: %w", err)
	}

	return next, nil
}

// Reorder rewrites positions of the section so that ids[i] gets position i.
// Ids that do not belong to the section are left untouched.
func (r *mediaRepository) Reorder(ctx context.Context, section string, ids []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE media_items SET position = ? WHERE id = ? AND section = ?`
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, query, i, id, section); err != nil {
			return fmt.Errorf("failed to set position of media item %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListFilePaths returns the storage keys referenced by any media item
func (r *mediaRepository) ListFilePaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT file_path FROM media_items WHERE file_path IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query file paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan file path: %w", err)
		}
		paths[path] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file paths: %w", err)
	}

	return paths, nil
}

// Ping verifies the database connection is alive
func (r *mediaRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
