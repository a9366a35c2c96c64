package runner

import (
	"context"

	"github.com/shouni/go-liminal-kit/pkg/domain"
	"github.com/shouni/go-liminal-kit/pkg/layout"
	"github.com/shouni/go-liminal-kit/pkg/publisher"
)

// CaptionComposer は生成画像にキャプションを合成します。
type CaptionComposer interface {
	Compose(ctx context.Context, ref domain.ImageRef, caption string) (*layout.Composition, error)
}

// ArtifactPublisher は1ストーリー分の成果物を永続化します。
type ArtifactPublisher interface {
	Publish(ctx context.Context, in publisher.Input) (*domain.ComicArtifact, error)
}

// StoryExecutor は1ストーリーを最初から最後まで実行します。
type StoryExecutor interface {
	Run(ctx context.Context, index int, set domain.PhilosopherSet, cmap domain.CharacterMap) (*domain.ComicArtifact, error)
}
