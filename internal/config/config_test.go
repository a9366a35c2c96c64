package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libconfig "github.com/shouni/go-liminal-kit/pkg/config"
)

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LIMINAL_PROVIDER", "openai")
	t.Setenv("LIMINAL_CONFIG", "")

	c := LoadConfig()
	assert.Equal(t, "sk-test", c.OpenAIAPIKey)
	assert.Equal(t, "openai", c.Provider)

	cfg, err := c.Resolve()
	require.NoError(t, err)
	assert.Equal(t, libconfig.DefaultOpenAITextModel, cfg.TextModel)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.NoError(t, cfg.Validate())
}

func TestResolve_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liminal.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider: gemini
text_model: file-model
philosopher_count: 5
tokens:
  plot: 1500
caption:
  watermark: ""
  max_chars: 60
output_dir: from-file
rate_interval: 500ms
request_timeout: 45s
cancel_on_failure: true
`), 0o644))

	t.Run("設定ファイルの値が既定値を上書きすること", func(t *testing.T) {
		c := &Config{GeminiAPIKey: "g", ConfigFile: path}
		cfg, err := c.Resolve()
		require.NoError(t, err)

		assert.Equal(t, libconfig.ProviderGemini, cfg.Provider)
		assert.Equal(t, "file-model", cfg.TextModel)
		assert.Equal(t, libconfig.DefaultGeminiImageModel, cfg.ImageModel)
		assert.Equal(t, 5, cfg.PhilosopherCount)
		assert.Equal(t, 1500, cfg.Tokens.Plot)
		assert.Equal(t, 3000, cfg.Tokens.Storyboard)
		assert.Equal(t, "", cfg.Caption.Watermark)
		assert.Equal(t, 60, cfg.Caption.MaxChars)
		assert.Equal(t, "from-file", cfg.OutputDir)
		assert.Equal(t, 500*time.Millisecond, cfg.RateInterval)
		assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
		assert.True(t, cfg.CancelOnFailure)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("環境変数とフラグは設定ファイルより優先されること", func(t *testing.T) {
		c := &Config{
			OpenAIAPIKey: "o",
			TextModel:    "env-model",
			OutputDir:    "from-env",
			ConfigFile:   path,
			Options: GenerateOptions{
				Provider:         "openai",
				OutputDir:        "from-flag",
				PhilosopherCount: 7,
				BatchTimeout:     time.Minute,
				NoDisplay:        true,
			},
		}
		cfg, err := c.Resolve()
		require.NoError(t, err)

		assert.Equal(t, libconfig.ProviderOpenAI, cfg.Provider)
		assert.Equal(t, "env-model", cfg.TextModel)
		assert.Equal(t, "from-flag", cfg.OutputDir)
		assert.Equal(t, 7, cfg.PhilosopherCount)
		assert.Equal(t, time.Minute, cfg.BatchTimeout)
		assert.False(t, cfg.WriteDisplay)
	})
}

func TestLoadFile(t *testing.T) {
	fc, err := LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Nil(t, fc)

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("provider: [unclosed"), 0o644))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}
