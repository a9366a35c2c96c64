package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-liminal-kit/pkg/adapters"
	"github.com/shouni/go-liminal-kit/pkg/config"
	"github.com/shouni/go-liminal-kit/pkg/domain"
	"github.com/shouni/go-liminal-kit/pkg/prompts"

	"golang.org/x/time/rate"
)

// Composer は各工程が共有する生成サービス・プロンプト・レートリミッタを束ねます。
type Composer struct {
	Text          adapters.TextGenerator
	Image         adapters.ImageGenerator
	PromptBuilder prompts.PromptBuilder
	RateLimiter   *rate.Limiter
	cfg           config.Config
}

// NewComposer は Composer の新しいインスタンスを初期化済みの状態で生成します。
func NewComposer(
	cfg config.Config,
	text adapters.TextGenerator,
	image adapters.ImageGenerator,
	pb prompts.PromptBuilder,
	limiter *rate.Limiter,
) (*Composer, error) {
	if text == nil {
		return nil, errors.New("TextGenerator は必須です")
	}
	if image == nil {
		return nil, errors.New("ImageGenerator は必須です")
	}
	if pb == nil {
		return nil, errors.New("PromptBuilder は必須です")
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(cfg.RateInterval), cfg.RateBurst)
	}
	return &Composer{
		Text:          text,
		Image:         image,
		PromptBuilder: pb,
		RateLimiter:   limiter,
		cfg:           cfg,
	}, nil
}

// Config は Composer が保持する設定を返します。
func (c *Composer) Config() config.Config {
	return c.cfg
}

// buildPrompt はテンプレートの実行に失敗した場合も工程の生成失敗として扱うのだ
func (c *Composer) buildPrompt(stage domain.Stage, mode string, data prompts.TemplateData) (string, error) {
	p, err := c.PromptBuilder.Build(mode, data)
	if err != nil {
		return "", domain.GenerationFailure(stage, fmt.Errorf("プロンプト生成に失敗: %w", err))
	}
	return p, nil
}

// generateText はレート制限と呼び出しごとのタイムアウトを適用してテキストを生成します。
func (c *Composer) generateText(ctx context.Context, stage domain.Stage, req adapters.TextRequest) (string, error) {
	if err := c.RateLimiter.Wait(ctx); err != nil {
		return "", domain.GenerationFailure(stage, err)
	}

	callCtx, cancel := c.withRequestTimeout(ctx)
	defer cancel()

	startTime := time.Now()
	out, err := c.Text.GenerateText(callCtx, req)
	if err != nil {
		return "", domain.GenerationFailure(stage, err)
	}
	slog.DebugContext(ctx, "Text generation completed",
		"stage", stage,
		"duration", time.Since(startTime).Round(time.Millisecond),
		"chars", len(out),
	)
	return out, nil
}

// generateImage はレート制限と呼び出しごとのタイムアウトを適用して画像を生成します。
func (c *Composer) generateImage(ctx context.Context, req adapters.ImageRequest) (domain.ImageRef, error) {
	if err := c.RateLimiter.Wait(ctx); err != nil {
		return domain.ImageRef{}, domain.GenerationFailure(domain.StageImageSynthesis, err)
	}

	callCtx, cancel := c.withRequestTimeout(ctx)
	defer cancel()

	ref, err := c.Image.GenerateImage(callCtx, req)
	if err != nil {
		return domain.ImageRef{}, domain.GenerationFailure(domain.StageImageSynthesis, err)
	}
	if ref.IsZero() {
		return domain.ImageRef{}, domain.GenerationFailure(domain.StageImageSynthesis, errors.New("image reference is empty"))
	}
	return ref, nil
}

// withRequestTimeout は RequestTimeout が 0 の場合は期限を設けません。
func (c *Composer) withRequestTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.RequestTimeout)
}
