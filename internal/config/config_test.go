package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config that passes Validate, for mutation in tests.
func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Data: DataConfig{
			BasePath: "/some/path",
		},
		Catalog: CatalogConfig{
			BaseURL:        "https://www.googleapis.com/books/v1",
			SearchCacheTTL: time.Hour,
		},
		Recommender: RecommenderConfig{
			BaseURL:           "http://localhost:8000",
			PreferredLanguage: "pl",
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},  // case insensitive
		{"INFO", true},   // case insensitive
		{"trace", false}, // not supported
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_MissingExternalURLs(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Recommender.BaseURL = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_NonPositiveSearchTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.SearchCacheTTL = 0
	assert.Error(t, cfg.Validate())
}

func TestExpandDataPath_EmptyUsesDefault(t *testing.T) {
	cfg := &Config{}

	err := cfg.expandDataPath()
	require.NoError(t, err)

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "Bookshelf", "data"), cfg.Data.BasePath)
}

func TestExpandDataPath_TildeExpansion(t *testing.T) {
	cfg := &Config{
		Data: DataConfig{BasePath: "~/books/data"},
	}

	err := cfg.expandDataPath()
	require.NoError(t, err)

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "books", "data"), cfg.Data.BasePath)
}

func TestExpandDataPath_AbsolutePath(t *testing.T) {
	cfg := &Config{
		Data: DataConfig{BasePath: "/var/lib/bookshelf"},
	}

	err := cfg.expandDataPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/bookshelf", cfg.Data.BasePath)
}

func TestExpandDataPath_RelativePath(t *testing.T) {
	cfg := &Config{
		Data: DataConfig{BasePath: "relative/data"},
	}

	err := cfg.expandDataPath()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.Data.BasePath))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	const envKey = "BOOKSHELF_TEST_CONFIG_VALUE"
	t.Setenv(envKey, "from-env")

	// Flag wins over env.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", envKey, "default"))

	// Env wins over default.
	assert.Equal(t, "from-env", getConfigValue("", envKey, "default"))

	// Default when nothing else set.
	assert.Equal(t, "default", getConfigValue("", "BOOKSHELF_TEST_UNSET", "default"))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	content := "# comment line\nBOOKSHELF_TEST_KEY_A=value-a\nBOOKSHELF_TEST_KEY_B=\"quoted value\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Cleanup(func() {
		os.Unsetenv("BOOKSHELF_TEST_KEY_A")
		os.Unsetenv("BOOKSHELF_TEST_KEY_B")
	})

	err := loadEnvFile(path)
	require.NoError(t, err)

	assert.Equal(t, "value-a", os.Getenv("BOOKSHELF_TEST_KEY_A"))
	assert.Equal(t, "quoted value", os.Getenv("BOOKSHELF_TEST_KEY_B"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(path, []byte("NOT A VALID LINE\n"), 0o600))

	err := loadEnvFile(path)
	assert.Error(t, err)
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	err := loadEnvFile("/nonexistent/.env")
	assert.Error(t, err)
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	const envKey = "BOOKSHELF_TEST_EXISTING"
	t.Setenv(envKey, "already-set")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(envKey+"=from-file\n"), 0o600))

	err := loadEnvFile(path)
	require.NoError(t, err)

	assert.Equal(t, "already-set", os.Getenv(envKey))
}

func TestLoadEnvFile_EmptyLinesAndWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	content := "\n\n  BOOKSHELF_TEST_PADDED  =  padded-value  \n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Cleanup(func() { os.Unsetenv("BOOKSHELF_TEST_PADDED") })

	err := loadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "padded-value", os.Getenv("BOOKSHELF_TEST_PADDED"))
}
