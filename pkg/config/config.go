package config

import (
	"errors"
	"fmt"
	"time"
)

// 生成サービスのプロバイダ名です。
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// デフォルト値の定義
const (
	DefaultProvider         = ProviderOpenAI
	DefaultOpenAITextModel  = "gpt-4o"
	DefaultOpenAIImageModel = "dall-e-3"
	DefaultGeminiModel      = "gemini-3-flash-preview"
	DefaultGeminiImageModel = "imagen-4.0-generate-001"
	DefaultTemperature      = float32(0.7)
	DefaultPhilosopherCount = 10
	DefaultImageSize        = "1024x1024"
	DefaultImageQuality     = "hd"
	DefaultRateInterval     = 2 * time.Second
	DefaultRateBurst        = 4
	DefaultHTTPTimeout      = 60 * time.Second
	DefaultOutputDir        = "output"
	DefaultWatermark        = "@liminal_comics"
	DefaultFontSize         = 24
	DefaultBandHeight       = 100
	DefaultCaptionLimit     = 80
	DefaultLineSpacing      = 5
	DefaultStyleSuffix      = "clean pointillism style, single panel comic, anthropomorphic animals, no text"
)

// TokenLimits は工程ごとの最大トークン数です。
type TokenLimits struct {
	Philosophers int
	Plot         int
	Storyboard   int
}

// Caption はキャプション合成の設定です。
type Caption struct {
	Watermark   string
	FontPath    string // 空なら組み込みの Go フォント
	FontSize    float64
	BandHeight  int
	MaxChars    int
	LineSpacing int
}

// Config は liminal の各 Runner を動作させるための基本設定です。
// APIキーもここで明示的に受け渡し、環境変数を直接参照しません。
type Config struct {
	// --- Provider Settings ---
	Provider      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string

	// --- AI Model Settings ---
	TextModel  string
	ImageModel string

	// --- Generation Settings ---
	Temperature      float32
	Tokens           TokenLimits
	PhilosopherCount int
	ImageSize        string
	ImageQuality     string
	StyleSuffix      string
	RateInterval     time.Duration
	RateBurst        int

	// --- Layout Settings ---
	Caption Caption

	// --- Storage & Output Settings ---
	OutputDir     string
	WriteDisplay  bool
	ImageCacheTTL time.Duration

	// --- Timeout & Cancellation ---
	RequestTimeout  time.Duration // 0 は無制限
	BatchTimeout    time.Duration // 0 は無制限
	HTTPTimeout     time.Duration
	CancelOnFailure bool
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		Provider:    DefaultProvider,
		TextModel:   DefaultOpenAITextModel,
		ImageModel:  DefaultOpenAIImageModel,
		Temperature: DefaultTemperature,
		Tokens: TokenLimits{
			Philosophers: 1200,
			Plot:         2000,
			Storyboard:   3000,
		},
		PhilosopherCount: DefaultPhilosopherCount,
		ImageSize:        DefaultImageSize,
		ImageQuality:     DefaultImageQuality,
		StyleSuffix:      DefaultStyleSuffix,
		RateInterval:     DefaultRateInterval,
		RateBurst:        DefaultRateBurst,
		Caption: Caption{
			Watermark:   DefaultWatermark,
			FontSize:    DefaultFontSize,
			BandHeight:  DefaultBandHeight,
			MaxChars:    DefaultCaptionLimit,
			LineSpacing: DefaultLineSpacing,
		},
		OutputDir:     DefaultOutputDir,
		WriteDisplay:  true,
		ImageCacheTTL: 5 * time.Minute,
		HTTPTimeout:   DefaultHTTPTimeout,
	}
}

// NewConfig はプロバイダとAPIキーを指定して、モデル名をそのプロバイダの既定値に揃えた Config を返します。
func NewConfig(provider, apiKey string) Config {
	cfg := DefaultConfig()
	cfg.Provider = provider
	switch provider {
	case ProviderGemini:
		cfg.GeminiAPIKey = apiKey
		cfg.TextModel = DefaultGeminiModel
		cfg.ImageModel = DefaultGeminiImageModel
	default:
		cfg.OpenAIAPIKey = apiKey
	}
	return cfg
}

// Validate は設定値の整合性を確認します。
func (c Config) Validate() error {
	var errs []error
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OpenAI API key is required"))
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("Gemini API key is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q", c.Provider))
	}
	if c.TextModel == "" || c.ImageModel == "" {
		errs = append(errs, errors.New("text and image models are required"))
	}
	if c.PhilosopherCount < 1 {
		errs = append(errs, fmt.Errorf("philosopher count must be positive: %d", c.PhilosopherCount))
	}
	if c.Caption.BandHeight < 0 || c.Caption.MaxChars < 1 || c.Caption.FontSize <= 0 {
		errs = append(errs, errors.New("caption band, limit and font size must be positive"))
	}
	if c.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("rate burst must be positive: %d", c.RateBurst))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output dir is required"))
	}
	return errors.Join(errs...)
}
