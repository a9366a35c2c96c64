package generator

import (
	"context"
	"log/slog"
	"time"

	"github.com/shouni/go-liminal-kit/pkg/adapters"
	"github.com/shouni/go-liminal-kit/pkg/domain"
	"github.com/shouni/go-liminal-kit/pkg/prompts"
)

// ImageSynthesizer は、コマの描写から文字を含まない画像を生成します。
// キャプションは画風の方向づけにだけ使い、文字はレイアウト工程で合成します。
type ImageSynthesizer struct {
	composer *Composer
}

// NewImageSynthesizer は ImageSynthesizer の新しいインスタンスを初期化します。
func NewImageSynthesizer(composer *Composer) *ImageSynthesizer {
	return &ImageSynthesizer{composer: composer}
}

// Execute は1枚の画像への参照を返します。
func (is *ImageSynthesizer) Execute(ctx context.Context, description, caption string) (domain.ImageRef, error) {
	cfg := is.composer.cfg
	prompt, err := is.composer.buildPrompt(domain.StageImageSynthesis, prompts.ModeImage, prompts.TemplateData{
		Description: description,
		Caption:     caption,
		StyleSuffix: cfg.StyleSuffix,
	})
	if err != nil {
		return domain.ImageRef{}, err
	}

	startTime := time.Now()
	ref, err := is.composer.generateImage(ctx, adapters.ImageRequest{
		Prompt:  prompt,
		Size:    cfg.ImageSize,
		Quality: cfg.ImageQuality,
	})
	if err != nil {
		return domain.ImageRef{}, err
	}

	slog.InfoContext(ctx, "Image generation completed",
		"duration", time.Since(startTime).Round(time.Millisecond),
		"has_url", ref.URL != "",
		"bytes", len(ref.Data),
	)
	return ref, nil
}
