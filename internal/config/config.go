package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shouni/go-utils/envutil"
	"gopkg.in/yaml.v3"

	libconfig "github.com/shouni/go-liminal-kit/pkg/config"
)

// デフォルト値の定義なのだ
const (
	DefaultConfigFile       = "liminal.yml"
	DefaultCharacterMapFile = "character_map.json"
	DefaultStoryCount       = 1
)

// Config はアプリケーション全体の環境設定（APIキーやモデル名）を保持する構造体なのだ。
type Config struct {
	Provider      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string
	TextModel     string
	ImageModel    string
	OutputDir     string
	FontPath      string
	ConfigFile    string

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	return &Config{
		Provider:      envutil.GetEnv("LIMINAL_PROVIDER", ""),
		OpenAIAPIKey:  envutil.GetEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: envutil.GetEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:  envutil.GetEnv("GEMINI_API_KEY", ""),
		TextModel:     envutil.GetEnv("LIMINAL_TEXT_MODEL", ""),
		ImageModel:    envutil.GetEnv("LIMINAL_IMAGE_MODEL", ""),
		OutputDir:     envutil.GetEnv("LIMINAL_OUTPUT_DIR", ""),
		FontPath:      envutil.GetEnv("LIMINAL_FONT_PATH", ""),
		ConfigFile:    envutil.GetEnv("LIMINAL_CONFIG", DefaultConfigFile),
	}
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
// ゼロ値は「指定なし」として扱うのだ。
type GenerateOptions struct {
	// 実行するストーリー数
	Count int // --count

	// キャラクターマップの取得方法
	Ideologies       []string // --ideology
	Answers          []string // --answers
	UseExisting      bool     // --use-existing
	Interactive      bool     // --interactive
	Questions        bool     // --questions
	CharacterMapFile string   // --character-map

	// AI挙動設定
	Provider         string // --provider
	TextModel        string // --model
	ImageModel       string // --image-model
	PhilosopherCount int    // --philosophers

	// 出力
	OutputDir string // --output-dir
	NoDisplay bool   // --no-display

	// 実行制御
	RequestTimeout  time.Duration // --request-timeout
	BatchTimeout    time.Duration // --batch-timeout
	HTTPTimeout     time.Duration // --http-timeout
	CancelOnFailure bool          // --cancel-on-failure
	Verbose         bool          // --verbose
}

// FileConfig は liminal.yml の内容なのだ。
type FileConfig struct {
	Provider         string   `yaml:"provider"`
	TextModel        string   `yaml:"text_model"`
	ImageModel       string   `yaml:"image_model"`
	Temperature      *float32 `yaml:"temperature"`
	PhilosopherCount int      `yaml:"philosopher_count"`
	Tokens           struct {
		Philosophers int `yaml:"philosophers"`
		Plot         int `yaml:"plot"`
		Storyboard   int `yaml:"storyboard"`
	} `yaml:"tokens"`
	Image struct {
		Size    string `yaml:"size"`
		Quality string `yaml:"quality"`
		Style   string `yaml:"style"`
	} `yaml:"image"`
	Caption struct {
		Watermark   *string `yaml:"watermark"`
		FontPath    string  `yaml:"font_path"`
		FontSize    float64 `yaml:"font_size"`
		BandHeight  int     `yaml:"band_height"`
		MaxChars    int     `yaml:"max_chars"`
		LineSpacing int     `yaml:"line_spacing"`
	} `yaml:"caption"`
	OutputDir       string        `yaml:"output_dir"`
	WriteDisplay    *bool         `yaml:"write_display"`
	RateInterval    time.Duration `yaml:"rate_interval"`
	RateBurst       int           `yaml:"rate_burst"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	BatchTimeout    time.Duration `yaml:"batch_timeout"`
	CancelOnFailure *bool         `yaml:"cancel_on_failure"`
}

// LoadFile は YAML 設定ファイルを読み込むのだ。ファイルが無い場合は nil を返すのだ。
func LoadFile(path string) (*FileConfig, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("設定ファイルのパースに失敗しました (%s): %w", path, err)
	}
	return &fc, nil
}

// Resolve は 既定値 < 設定ファイル < 環境変数 < フラグ の順に重ねて、ライブラリ用の設定を作るのだ。
func (c *Config) Resolve() (libconfig.Config, error) {
	fc, err := LoadFile(c.ConfigFile)
	if err != nil {
		return libconfig.Config{}, err
	}
	if fc == nil {
		fc = &FileConfig{}
	}

	provider := firstNonEmpty(c.Options.Provider, c.Provider, fc.Provider, libconfig.DefaultProvider)
	cfg := libconfig.NewConfig(provider, "")
	cfg.OpenAIAPIKey = c.OpenAIAPIKey
	cfg.OpenAIBaseURL = c.OpenAIBaseURL
	cfg.GeminiAPIKey = c.GeminiAPIKey

	applyFile(&cfg, fc)

	cfg.TextModel = firstNonEmpty(c.Options.TextModel, c.TextModel, cfg.TextModel)
	cfg.ImageModel = firstNonEmpty(c.Options.ImageModel, c.ImageModel, cfg.ImageModel)
	cfg.OutputDir = firstNonEmpty(c.Options.OutputDir, c.OutputDir, cfg.OutputDir)
	cfg.Caption.FontPath = firstNonEmpty(c.FontPath, cfg.Caption.FontPath)

	if c.Options.PhilosopherCount > 0 {
		cfg.PhilosopherCount = c.Options.PhilosopherCount
	}
	if c.Options.RequestTimeout > 0 {
		cfg.RequestTimeout = c.Options.RequestTimeout
	}
	if c.Options.BatchTimeout > 0 {
		cfg.BatchTimeout = c.Options.BatchTimeout
	}
	if c.Options.HTTPTimeout > 0 {
		cfg.HTTPTimeout = c.Options.HTTPTimeout
	}
	if c.Options.CancelOnFailure {
		cfg.CancelOnFailure = true
	}
	if c.Options.NoDisplay {
		cfg.WriteDisplay = false
	}
	return cfg, nil
}

func applyFile(cfg *libconfig.Config, fc *FileConfig) {
	cfg.TextModel = firstNonEmpty(fc.TextModel, cfg.TextModel)
	cfg.ImageModel = firstNonEmpty(fc.ImageModel, cfg.ImageModel)
	if fc.Temperature != nil {
		cfg.Temperature = *fc.Temperature
	}
	if fc.PhilosopherCount > 0 {
		cfg.PhilosopherCount = fc.PhilosopherCount
	}
	if fc.Tokens.Philosophers > 0 {
		cfg.Tokens.Philosophers = fc.Tokens.Philosophers
	}
	if fc.Tokens.Plot > 0 {
		cfg.Tokens.Plot = fc.Tokens.Plot
	}
	if fc.Tokens.Storyboard > 0 {
		cfg.Tokens.Storyboard = fc.Tokens.Storyboard
	}
	cfg.ImageSize = firstNonEmpty(fc.Image.Size, cfg.ImageSize)
	cfg.ImageQuality = firstNonEmpty(fc.Image.Quality, cfg.ImageQuality)
	cfg.StyleSuffix = firstNonEmpty(fc.Image.Style, cfg.StyleSuffix)

	if fc.Caption.Watermark != nil {
		cfg.Caption.Watermark = *fc.Caption.Watermark
	}
	cfg.Caption.FontPath = firstNonEmpty(fc.Caption.FontPath, cfg.Caption.FontPath)
	if fc.Caption.FontSize > 0 {
		cfg.Caption.FontSize = fc.Caption.FontSize
	}
	if fc.Caption.BandHeight > 0 {
		cfg.Caption.BandHeight = fc.Caption.BandHeight
	}
	if fc.Caption.MaxChars > 0 {
		cfg.Caption.MaxChars = fc.Caption.MaxChars
	}
	if fc.Caption.LineSpacing > 0 {
		cfg.Caption.LineSpacing = fc.Caption.LineSpacing
	}

	cfg.OutputDir = firstNonEmpty(fc.OutputDir, cfg.OutputDir)
	if fc.WriteDisplay != nil {
		cfg.WriteDisplay = *fc.WriteDisplay
	}
	if fc.RateInterval > 0 {
		cfg.RateInterval = fc.RateInterval
	}
	if fc.RateBurst > 0 {
		cfg.RateBurst = fc.RateBurst
	}
	if fc.RequestTimeout > 0 {
		cfg.RequestTimeout = fc.RequestTimeout
	}
	if fc.BatchTimeout > 0 {
		cfg.BatchTimeout = fc.BatchTimeout
	}
	if fc.CancelOnFailure != nil {
		cfg.CancelOnFailure = *fc.CancelOnFailure
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
