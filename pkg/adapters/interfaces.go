package adapters

import (
	"context"

	"github.com/shouni/go-liminal-kit/pkg/domain"
)

// TextRequest はテキスト生成1回分の要求です。
type TextRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
	// JSON が true の場合、JSONオブジェクトでの応答を要求するのだ
	JSON bool
}

// ImageRequest は画像生成1回分の要求です。
type ImageRequest struct {
	Prompt  string
	Size    string
	Quality string
}

// TextGenerator はテキスト生成サービスとの境界なのだ
type TextGenerator interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// ImageGenerator は画像生成サービスとの境界なのだ
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (domain.ImageRef, error)
}
