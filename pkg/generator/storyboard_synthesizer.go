package generator

import (
	"context"

	"github.com/shouni/go-liminal-kit/pkg/adapters"
	"github.com/shouni/go-liminal-kit/pkg/domain"
	"github.com/shouni/go-liminal-kit/pkg/prompts"
)

// StoryboardSynthesizer は、あらすじを1コマ漫画のストーリーボードに変換します。
type StoryboardSynthesizer struct {
	composer *Composer
}

// NewStoryboardSynthesizer は StoryboardSynthesizer の新しいインスタンスを初期化します。
func NewStoryboardSynthesizer(composer *Composer) *StoryboardSynthesizer {
	return &StoryboardSynthesizer{composer: composer}
}

// Execute は構造化出力を要求し、domain.ParseStoryboard で検証します。
// 通信の失敗は GenerationFailure、スキーマ違反は SchemaViolation になります。
func (ss *StoryboardSynthesizer) Execute(
	ctx context.Context,
	set domain.PhilosopherSet,
	plot domain.Plot,
	cmap domain.CharacterMap,
) (*domain.Storyboard, error) {
	cmapJSON, err := cmap.JSON()
	if err != nil {
		return nil, domain.GenerationFailure(domain.StageStoryboardSynthesis, err)
	}

	cfg := ss.composer.cfg
	prompt, err := ss.composer.buildPrompt(domain.StageStoryboardSynthesis, prompts.ModeStoryboard, prompts.TemplateData{
		CharacterMap: cmapJSON,
		Philosophers: set.String(),
		Plot:         string(plot),
	})
	if err != nil {
		return nil, err
	}

	raw, err := ss.composer.generateText(ctx, domain.StageStoryboardSynthesis, adapters.TextRequest{
		System:      prompts.StoryboardSystemRole,
		Prompt:      prompt,
		MaxTokens:   cfg.Tokens.Storyboard,
		Temperature: cfg.Temperature,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	return domain.ParseStoryboard(raw)
}
