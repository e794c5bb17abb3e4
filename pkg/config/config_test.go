package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shares.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadShares(t *testing.T) {
	path := writeConfig(t, `
[media]
path = /mnt/media

[scratch]
path = /mnt/scratch

[vault]
path = /mnt/vault
protected = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Shares, 3)

	// Deterministic listing order by section name.
	assert.Equal(t, "media", cfg.Shares[0].Name)
	assert.Equal(t, "scratch", cfg.Shares[1].Name)
	assert.Equal(t, "vault", cfg.Shares[2].Name)
	assert.True(t, cfg.Shares[2].Protected)

	// Protected shares are never operated on.
	assert.Equal(t, []string{"/mnt/media", "/mnt/scratch"}, cfg.ShareRoots())
}

func TestLoadReservedSections(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = DEBUG
format = json

[cleanup]
days = 14
minutes = 30

[media]
path = /mnt/media
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 14, cfg.Cleanup.Days)
	assert.Equal(t, 30, cfg.Cleanup.Minutes)

	require.Len(t, cfg.Shares, 1)
	assert.Equal(t, "media", cfg.Shares[0].Name)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	require.Error(t, err)
}

func TestLoadShareWithoutPath(t *testing.T) {
	path := writeConfig(t, `
[broken]
comment = no path key here
`)

	_, err := Load(path)
	require.Error(t, err, "a share section without a path must fail validation")
}

func TestLoadInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = LOUD

[media]
path = /mnt/media
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestMaxAge(t *testing.T) {
	tests := []struct {
		name    string
		cleanup CleanupConfig
		want    time.Duration
	}{
		{
			name: "default when unset",
			want: 7 * 24 * time.Hour,
		},
		{
			name:    "days only",
			cleanup: CleanupConfig{Days: 14},
			want:    14 * 24 * time.Hour,
		},
		{
			name:    "days and minutes",
			cleanup: CleanupConfig{Days: 1, Minutes: 30},
			want:    24*time.Hour + 30*time.Minute,
		},
		{
			name:    "minutes only",
			cleanup: CleanupConfig{Minutes: 90},
			want:    90 * time.Minute,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Cleanup: tc.cleanup}
			assert.Equal(t, tc.want, cfg.MaxAge())
		})
	}
}

func TestLoggingEnvOverride(t *testing.T) {
	t.Setenv("KGBSORTER_LOGGING_LEVEL", "ERROR")

	path := writeConfig(t, `
[logging]
level = INFO

[media]
path = /mnt/media
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.Logging.Level)
}
