package generator

import (
	"context"

	"github.com/shouni/go-liminal-kit/pkg/domain"
)

// PhilosopherSelectorExecutor は、信条と対照的な思想家の一覧を選びます。
type PhilosopherSelectorExecutor interface {
	Execute(ctx context.Context, cmap domain.CharacterMap) (domain.PhilosopherSet, error)
}

// PlotExecutor は、1ストーリー分のあらすじを生成します。
type PlotExecutor interface {
	Execute(ctx context.Context, cmap domain.CharacterMap, set domain.PhilosopherSet) (domain.Plot, error)
}

// StoryboardExecutor は、あらすじから構造化されたストーリーボードを生成します。
type StoryboardExecutor interface {
	Execute(ctx context.Context, set domain.PhilosopherSet, plot domain.Plot, cmap domain.CharacterMap) (*domain.Storyboard, error)
}

// ImageExecutor は、コマの描写から文字のない画像を1枚生成します。
type ImageExecutor interface {
	Execute(ctx context.Context, description, caption string) (domain.ImageRef, error)
}
