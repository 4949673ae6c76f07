package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/djnacci/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupSocialLinkTestRepository creates a social link repository with a mock database
func setupSocialLinkTestRepository(t *testing.T) (*socialLinkRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewSocialLinkRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestSocialLinkRepository_GetAll(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedCount int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "platform", "url"}).
					AddRow("1", "instagram", "https://instagram.com/djnacci").
					AddRow("2", "tiktok", "https://tiktok.com/@djnacci")
				mock.ExpectQuery(`SELECT id, platform, url FROM social_links ORDER BY created_at ASC`).
					WillReturnRows(rows)
			},
			expectedCount: 2,
		},
		{
			name: "empty",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, platform, url FROM social_links`).
					WillReturnRows(sqlmock.NewRows([]string{"id", "platform", "url"}))
			},
			expectedCount: 0,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, platform, url FROM social_links`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupSocialLinkTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			links, err := repo.GetAll(context.Background())

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, links)
				assert.Len(t, links, tt.expectedCount)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSocialLinkRepository_GetByPlatform(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupSocialLinkTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT id, platform, url FROM social_links WHERE platform = \? LIMIT 1`).
			WithArgs("youtube").
			WillReturnRows(sqlmock.NewRows([]string{"id", "platform", "url"}).
				AddRow("3", "youtube", "https://youtube.com/@djnacci"))

		link, err := repo.GetByPlatform(context.Background(), "youtube")
		require.NoError(t, err)
		assert.Equal(t, &models.SocialLink{ID: "3", Platform: "youtube", URL: "https://youtube.com/@djnacci"}, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupSocialLinkTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT id, platform, url FROM social_links WHERE platform = \?`).
			WithArgs("myspace").
			WillReturnError(sql.ErrNoRows)

		link, err := repo.GetByPlatform(context.Background(), "myspace")
		assert.ErrorIs(t, err, models.ErrSocialLinkNotFound)
		assert.Nil(t, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSocialLinkRepository_Upsert(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name: "inserted",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO social_links \(id, platform, url\) VALUES \(\?, \?, \?\) ON DUPLICATE KEY UPDATE url = VALUES\(url\)`).
					WithArgs("new-id", "threads", "https://threads.net/@djnacci").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "updated existing platform",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO social_links`).
					WithArgs("new-id", "threads", "https://threads.net/@djnacci").
					WillReturnResult(sqlmock.NewResult(0, 2))
			},
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO social_links`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupSocialLinkTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Upsert(context.Background(), &models.SocialLink{
				ID:       "new-id",
				Platform: "threads",
				URL:      "https://threads.net/@djnacci",
			})

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSocialLinkRepository_CreateIfMissing(t *testing.T) {
	tests := []struct {
		name            string
		rowsAffected    int64
		execErr         error
		expectedCreated bool
		expectedError   bool
	}{
		{name: "inserted", rowsAffected: 1, expectedCreated: true},
		{name: "already present", rowsAffected: 0, expectedCreated: false},
		{name: "database error", execErr: errors.New("database error"), expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupSocialLinkTestRepository(t)
			defer cleanup()

			exp := mock.ExpectExec(`INSERT IGNORE INTO social_links`).
				WithArgs("id-1", "instagram", "https://instagram.com/djnacci")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))
			}

			created, err := repo.CreateIfMissing(context.Background(), &models.SocialLink{
				ID:       "id-1",
				Platform: "instagram",
				URL:      "https://instagram.com/djnacci",
			})

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedCreated, created)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
