package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "text-embedding-004", cfg.EmbeddingModel)
	assert.Equal(t, "gemini-2.5-flash", cfg.GenerationModel)
	assert.Equal(t, 60*time.Second, cfg.CallTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithAPIKey("k"),
		WithHost("http://localhost:9100"),
		WithEmbeddingModel("embeddinggemma"),
		WithGenerationModel("qwen2.5:3b"),
		WithCallTimeout(5*time.Second),
		WithMaxRetries(5),
		WithRetryBaseDelay(100*time.Millisecond),
	)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:3b", cfg.GenerationModel)
	assert.Equal(t, 5*time.Second, cfg.CallTimeout)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.RetryBaseDelay)
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"adds v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash first", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"leaves v1 alone", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty host untouched", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithHost(tt.host))
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.Host)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		require.NoError(t, NewConfig().Validate())
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing generation model", func(t *testing.T) {
		cfg := NewConfig(WithGenerationModel(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero retries rejected", func(t *testing.T) {
		cfg := NewConfig(WithMaxRetries(0))
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive timeout rejected", func(t *testing.T) {
		cfg := NewConfig(WithCallTimeout(0))
		assert.Error(t, cfg.Validate())
	})
}
