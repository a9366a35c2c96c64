package generator

import (
	"context"
	"errors"
	"strings"

	"github.com/shouni/go-liminal-kit/pkg/adapters"
	"github.com/shouni/go-liminal-kit/pkg/domain"
	"github.com/shouni/go-liminal-kit/pkg/prompts"
)

// PlotSynthesizer は、擬人化された動物たちの「もしも」のあらすじを生成します。
type PlotSynthesizer struct {
	composer *Composer
}

// NewPlotSynthesizer は PlotSynthesizer の新しいインスタンスを初期化します。
func NewPlotSynthesizer(composer *Composer) *PlotSynthesizer {
	return &PlotSynthesizer{composer: composer}
}

// Execute は自由形式のあらすじを返します。空の応答は生成失敗です。
func (ps *PlotSynthesizer) Execute(ctx context.Context, cmap domain.CharacterMap, set domain.PhilosopherSet) (domain.Plot, error) {
	cmapJSON, err := cmap.JSON()
	if err != nil {
		return "", domain.GenerationFailure(domain.StagePlotSynthesis, err)
	}

	cfg := ps.composer.cfg
	prompt, err := ps.composer.buildPrompt(domain.StagePlotSynthesis, prompts.ModePlot, prompts.TemplateData{
		CharacterMap: cmapJSON,
		Philosophers: set.String(),
	})
	if err != nil {
		return "", err
	}

	raw, err := ps.composer.generateText(ctx, domain.StagePlotSynthesis, adapters.TextRequest{
		System:      prompts.PlotSystemRole,
		Prompt:      prompt,
		MaxTokens:   cfg.Tokens.Plot,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return "", err
	}

	plot := strings.TrimSpace(raw)
	if plot == "" {
		return "", domain.GenerationFailure(domain.StagePlotSynthesis, errors.New("plot is empty"))
	}
	return domain.Plot(plot), nil
}
