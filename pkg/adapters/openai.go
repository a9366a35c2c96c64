package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/shouni/go-liminal-kit/pkg/domain"
)

// OpenAIAdapter は Chat Completions と Images API を使う TextGenerator / ImageGenerator 実装です。
type OpenAIAdapter struct {
	client     *openai.Client
	textModel  string
	imageModel string
}

// OpenAIOptions は OpenAIAdapter の初期化パラメータです。
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string // 空なら公式エンドポイント
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
}

// NewOpenAIAdapter は OpenAI クライアントを初期化します。
func NewOpenAIAdapter(opts OpenAIOptions) (*OpenAIAdapter, error) {
	if opts.APIKey == "" {
		return nil, errors.New("OpenAI API key は必須です")
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	textModel := opts.TextModel
	if textModel == "" {
		textModel = openai.GPT4o
	}
	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = openai.CreateImageModelDallE3
	}

	return &OpenAIAdapter{
		client:     openai.NewClientWithConfig(cfg),
		textModel:  textModel,
		imageModel: imageModel,
	}, nil
}

// GenerateText はチャット補完を1回呼び出し、最初の候補の本文を返します。
func (a *OpenAIAdapter) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       a.textModel,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		N:           1,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := a.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("chat completion (model: %s) failed: %w", a.textModel, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("chat completion returned empty content")
	}
	return content, nil
}

// GenerateImage は1枚の画像を生成し、その URL を返します。
func (a *OpenAIAdapter) GenerateImage(ctx context.Context, req ImageRequest) (domain.ImageRef, error) {
	resp, err := a.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          a.imageModel,
		N:              1,
		Size:           req.Size,
		Quality:        req.Quality,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return domain.ImageRef{}, fmt.Errorf("image generation (model: %s) failed: %w", a.imageModel, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return domain.ImageRef{}, errors.New("image generation returned no url")
	}
	return domain.ImageRef{URL: resp.Data[0].URL}, nil
}
