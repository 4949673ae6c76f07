package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/djnacci/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockSocialLinkRepository keeps links keyed by platform
type mockSocialLinkRepository struct {
	links map[string]models.SocialLink
	err   error
}

func newMockSocialLinkRepository(links ...models.SocialLink) *mockSocialLinkRepository {
	m := &mockSocialLinkRepository{links: make(map[string]models.SocialLink)}
	for _, l := range links {
		m.links[l.Platform] = l
	}
	return m
}

func (m *mockSocialLinkRepository) GetAll(ctx context.Context) ([]models.SocialLink, error) {
	if m.err != nil {
		return nil, m.err
	}
	links := []models.SocialLink{}
	for _, l := range m.links {
		links = append(links, l)
	}
	sort.Slice(links, func(i, j int) bool { return links[i].Platform < links[j].Platform })
	return links, nil
}

func (m *mockSocialLinkRepository) GetByPlatform(ctx context.Context, platform string) (*models.SocialLink, error) {
	if m.err != nil {
		return nil, m.err
	}
	l, ok := m.links[platform]
	if !ok {
		return nil, models.ErrSocialLinkNotFound
	}
	return &l, nil
}

func (m *mockSocialLinkRepository) Upsert(ctx context.Context, link *models.SocialLink) error {
	if m.err != nil {
		return m.err
	}
	if existing, ok := m.links[link.Platform]; ok {
		existing.URL = link.URL
		m.links[link.Platform] = existing
		return nil
	}
	m.links[link.Platform] = *link
	return nil
}

func (m *mockSocialLinkRepository) CreateIfMissing(ctx context.Context, link *models.SocialLink) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.links[link.Platform]; ok {
		return false, nil
	}
	m.links[link.Platform] = *link
	return true, nil
}

func TestSocialLinkService_Upsert(t *testing.T) {
	t.Run("replaces url without duplicating platform", func(t *testing.T) {
		repo := newMockSocialLinkRepository(models.SocialLink{ID: "s1", Platform: "instagram", URL: "https://instagram.com/old"})
		svc := NewSocialLinkService(repo, zap.NewNop())

		link, err := svc.Upsert(context.Background(), &models.UpsertSocialLinkRequest{
			Platform: " Instagram ",
			URL:      "https://instagram.com/djnacci",
		})

		require.NoError(t, err)
		assert.Equal(t, "s1", link.ID)
		assert.Equal(t, "instagram", link.Platform)
		assert.Equal(t, "https://instagram.com/djnacci", link.URL)

		links, err := svc.GetAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, links, 1)
	})

	t.Run("creates missing platform", func(t *testing.T) {
		repo := newMockSocialLinkRepository()
		svc := NewSocialLinkService(repo, zap.NewNop())

		link, err := svc.Upsert(context.Background(), &models.UpsertSocialLinkRequest{Platform: "tiktok", URL: "https://tiktok.com/@djnacci"})

		require.NoError(t, err)
		assert.NotEmpty(t, link.ID)
		assert.Len(t, repo.links, 1)
	})

	t.Run("missing platform", func(t *testing.T) {
		svc := NewSocialLinkService(newMockSocialLinkRepository(), zap.NewNop())

		link, err := svc.Upsert(context.Background(), &models.UpsertSocialLinkRequest{URL: "x"})

		assert.ErrorIs(t, err, ErrPlatformRequired)
		assert.Nil(t, link)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := newMockSocialLinkRepository()
		repo.err = errors.New("db down")
		svc := NewSocialLinkService(repo, zap.NewNop())

		_, err := svc.Upsert(context.Background(), &models.UpsertSocialLinkRequest{Platform: "youtube", URL: "x"})

		assert.Error(t, err)
	})
}

func TestSocialLinkService_GetAll_PropagatesErrors(t *testing.T) {
	repo := newMockSocialLinkRepository()
	repo.err = errors.New("db down")
	svc := NewSocialLinkService(repo, zap.NewNop())

	links, err := svc.GetAll(context.Background())

	assert.Error(t, err)
	assert.Nil(t, links)
}

func TestSocialLinkService_SeedDefaults(t *testing.T) {
	repo := newMockSocialLinkRepository(models.SocialLink{ID: "s1", Platform: "instagram", URL: "https://instagram.com/custom"})
	svc := NewSocialLinkService(repo, zap.NewNop())

	created, err := svc.SeedDefaults(context.Background(), []models.SocialLink{
		{Platform: "instagram", URL: "https://instagram.com/djnacci"},
		{Platform: "tiktok", URL: "https://tiktok.com/@djnacci"},
		{Platform: "", URL: "ignored"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, "https://instagram.com/custom", repo.links["instagram"].URL)
	assert.Equal(t, "https://tiktok.com/@djnacci", repo.links["tiktok"].URL)
	assert.Len(t, repo.links, 2)
}
