package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/go-liminal-kit/pkg/adapters"
	"github.com/shouni/go-liminal-kit/pkg/domain"
	"github.com/shouni/go-liminal-kit/pkg/prompts"
)

// PhilosopherSelector は、キャラクターマップと対照的な思想家を選びます。
// バッチごとに1度だけ呼ばれ、結果は全ストーリーで共有されます。
type PhilosopherSelector struct {
	composer *Composer
}

// NewPhilosopherSelector は PhilosopherSelector の新しいインスタンスを初期化します。
func NewPhilosopherSelector(composer *Composer) *PhilosopherSelector {
	return &PhilosopherSelector{composer: composer}
}

// Execute は PhilosopherCount 人ちょうどの思想家を返します。ローカルの代替値はありません。
func (ps *PhilosopherSelector) Execute(ctx context.Context, cmap domain.CharacterMap) (domain.PhilosopherSet, error) {
	if err := cmap.Validate(); err != nil {
		return domain.PhilosopherSet{}, fmt.Errorf("キャラクターマップが不正です: %w", err)
	}
	cmapJSON, err := cmap.JSON()
	if err != nil {
		return domain.PhilosopherSet{}, err
	}

	cfg := ps.composer.cfg
	prompt, err := ps.composer.buildPrompt(domain.StagePhilosopherSelection, prompts.ModePhilosophers, prompts.TemplateData{
		CharacterMap: cmapJSON,
		Count:        cfg.PhilosopherCount,
	})
	if err != nil {
		return domain.PhilosopherSet{}, err
	}

	slog.InfoContext(ctx, "Selecting contrasting philosophers", "count", cfg.PhilosopherCount, "beliefs", len(cmap))
	raw, err := ps.composer.generateText(ctx, domain.StagePhilosopherSelection, adapters.TextRequest{
		System:      prompts.PhilosopherSystemRole,
		Prompt:      prompt,
		MaxTokens:   cfg.Tokens.Philosophers,
		Temperature: cfg.Temperature,
		JSON:        true,
	})
	if err != nil {
		return domain.PhilosopherSet{}, err
	}

	set, err := parsePhilosopherSet(raw, cfg.PhilosopherCount)
	if err != nil {
		return domain.PhilosopherSet{}, domain.GenerationFailure(domain.StagePhilosopherSelection, err)
	}
	return set, nil
}

// parsePhilosopherSet は応答から思想家の一覧を取り出し、人数と内容を検証します。
func parsePhilosopherSet(raw string, want int) (domain.PhilosopherSet, error) {
	body := domain.ExtractJSONObject(raw)
	if body == "" {
		return domain.PhilosopherSet{}, errors.New("empty response")
	}

	var set domain.PhilosopherSet
	if err := json.Unmarshal([]byte(body), &set); err != nil {
		return domain.PhilosopherSet{}, fmt.Errorf("AIからの応答に含まれるJSONの解析に失敗しました (応答抜粋: %q): %w", domain.Truncate(raw, 200), err)
	}
	if err := set.Validate(want); err != nil {
		return domain.PhilosopherSet{}, err
	}
	return set, nil
}
