package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"

	"github.com/shouni/go-liminal-kit/pkg/domain"
)

// GeminiTextAdapter は go-gemini-client による TextGenerator 実装です。
// Temperature はクライアント初期化時に固定されるため、要求ごとの値は使いません。
type GeminiTextAdapter struct {
	client gemini.GenerativeModel
	model  string
}

// NewGeminiTextAdapter は gemini クライアントを初期化します。
func NewGeminiTextAdapter(ctx context.Context, apiKey, model string, temperature float32) (*GeminiTextAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key は必須です")
	}
	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return &GeminiTextAdapter{client: client, model: model}, nil
}

// GenerateText は役割指示と本文をまとめて1回の生成要求を送ります。
func (a *GeminiTextAdapter) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + req.Prompt
	}
	if req.JSON {
		prompt += "\n\nRespond with a single JSON object only."
	}

	resp, err := a.client.GenerateContent(ctx, prompt, a.model)
	if err != nil {
		return "", fmt.Errorf("gemini generate content (model: %s) failed: %w", a.model, err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.New("gemini returned empty text")
	}
	return text, nil
}

// GeminiImageAdapter は genai の画像生成モデルを使う ImageGenerator 実装です。
type GeminiImageAdapter struct {
	models *genai.Models
	model  string
}

// NewGeminiImageAdapter は genai クライアントを初期化します。
func NewGeminiImageAdapter(ctx context.Context, apiKey, model string) (*GeminiImageAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key は必須です")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの初期化に失敗しました: %w", err)
	}
	return &GeminiImageAdapter{models: client.Models, model: model}, nil
}

// GenerateImage は1枚の画像を生成し、バイト列として返します。
func (a *GeminiImageAdapter) GenerateImage(ctx context.Context, req ImageRequest) (domain.ImageRef, error) {
	resp, err := a.models.GenerateImages(ctx, a.model, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    aspectRatio(req.Size),
	})
	if err != nil {
		return domain.ImageRef{}, fmt.Errorf("gemini image generation (model: %s) failed: %w", a.model, err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return domain.ImageRef{}, errors.New("gemini returned no image")
	}
	img := resp.GeneratedImages[0].Image
	if len(img.ImageBytes) == 0 {
		return domain.ImageRef{}, errors.New("gemini returned empty image bytes")
	}
	return domain.ImageRef{Data: img.ImageBytes, MimeType: img.MIMEType}, nil
}

// aspectRatio は "WxH" 形式のサイズを Imagen のアスペクト比に変換します。
func aspectRatio(size string) string {
	switch size {
	case "1792x1024":
		return "16:9"
	case "1024x1792":
		return "9:16"
	default:
		return "1:1"
	}
}
