package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSocialLinks(t *testing.T) {
	t.Run("bundled defaults", func(t *testing.T) {
		links, err := LoadSocialLinks("../../seed/social_links.yaml")
		require.NoError(t, err)

		platforms := make([]string, 0, len(links))
		for _, l := range links {
			platforms = append(platforms, l.Platform)
			assert.NotEmpty(t, l.URL)
		}
		assert.ElementsMatch(t, []string{"instagram", "tiktok", "youtube", "threads"}, platforms)
	})

	t.Run("missing file", func(t *testing.T) {
		links, err := LoadSocialLinks(filepath.Join(t.TempDir(), "nope.yaml"))

		assert.NoError(t, err)
		assert.Nil(t, links)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("social_links: ["), 0o644))

		_, err := LoadSocialLinks(path)

		assert.Error(t, err)
	})
}

func TestParseSocialLinks(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedError bool
		expectedCount int
	}{
		{
			name:          "two links",
			input:         "social_links:\n  - platform: instagram\n    url: https://instagram.com/x\n  - platform: tiktok\n    url: https://tiktok.com/@x\n",
			expectedCount: 2,
		},
		{
			name:          "empty document",
			input:         "",
			expectedCount: 0,
		},
		{
			name:          "missing platform",
			input:         "social_links:\n  - url: https://instagram.com/x\n",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links, err := ParseSocialLinks([]byte(tt.input))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, links, tt.expectedCount)
		})
	}
}
