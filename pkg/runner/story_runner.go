package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-liminal-kit/pkg/domain"
	"github.com/shouni/go-liminal-kit/pkg/generator"
	"github.com/shouni/go-liminal-kit/pkg/publisher"
)

// StoryRunner は1ストーリー分の工程（あらすじ→ストーリーボード→画像→キャプション→保存）を順に実行します。
type StoryRunner struct {
	plot       generator.PlotExecutor
	storyboard generator.StoryboardExecutor
	image      generator.ImageExecutor
	composer   CaptionComposer
	publisher  ArtifactPublisher
}

// StoryRunnerArgs は StoryRunner の依存関係です。
type StoryRunnerArgs struct {
	Plot       generator.PlotExecutor
	Storyboard generator.StoryboardExecutor
	Image      generator.ImageExecutor
	Composer   CaptionComposer
	Publisher  ArtifactPublisher
}

// NewStoryRunner は依存関係を注入して StoryRunner を初期化します。
func NewStoryRunner(args StoryRunnerArgs) (*StoryRunner, error) {
	if args.Plot == nil || args.Storyboard == nil || args.Image == nil {
		return nil, errors.New("生成工程（plot, storyboard, image）は必須です")
	}
	if args.Composer == nil {
		return nil, errors.New("CaptionComposer は必須です")
	}
	if args.Publisher == nil {
		return nil, errors.New("ArtifactPublisher は必須です")
	}
	return &StoryRunner{
		plot:       args.Plot,
		storyboard: args.Storyboard,
		image:      args.Image,
		composer:   args.Composer,
		publisher:  args.Publisher,
	}, nil
}

// Run は index 番目のストーリーを生成します。どの工程で失敗してもこのストーリーだけが中断されます。
// 保存は全工程が成功した後にだけ行うため、途中までのストーリーボードは残りません。
func (r *StoryRunner) Run(
	ctx context.Context,
	index int,
	set domain.PhilosopherSet,
	cmap domain.CharacterMap,
) (*domain.ComicArtifact, error) {
	logger := slog.With("story_index", index)
	startTime := time.Now()

	// 1. あらすじ
	logger.InfoContext(ctx, "Synthesizing plot")
	plot, err := r.plot.Execute(ctx, cmap, set)
	if err != nil {
		return nil, err
	}

	// 2. ストーリーボード
	logger.InfoContext(ctx, "Synthesizing storyboard")
	sb, err := r.storyboard.Execute(ctx, set, plot, cmap)
	if err != nil {
		return nil, err
	}
	logger = logger.With("title", sb.ComicTitle)

	// 3. 画像（キャプションは画風の方向づけだけに使う）
	logger.InfoContext(ctx, "Synthesizing image")
	ref, err := r.image.Execute(ctx, sb.ComicDescription, sb.ComicCaption)
	if err != nil {
		return nil, err
	}
	if ref.URL != "" {
		if err := sb.AttachImageURL(ref.URL); err != nil {
			return nil, domain.GenerationFailure(domain.StageImageSynthesis, err)
		}
	}

	// 4. キャプション合成
	comp, err := r.composer.Compose(ctx, ref, sb.ComicCaption)
	if err != nil {
		return nil, err
	}
	comic, err := comp.PNG()
	if err != nil {
		return nil, domain.LayoutFailure(err)
	}
	logger.DebugContext(ctx, "Caption composed", "lines", len(comp.Plan.Lines), "width", comp.Plan.Width, "height", comp.Plan.Height)

	// 5. 保存
	artifact, err := r.publisher.Publish(ctx, publisher.Input{
		Index:      index,
		Storyboard: sb,
		Comic:      comic,
		Source:     ref,
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Story completed",
		"comic", artifact.ComicPath,
		"duration", time.Since(startTime).Round(time.Millisecond),
	)
	return artifact, nil
}

// storyError はバッチ結果用にストーリー番号を付け加えます。
func storyError(index int, err error) error {
	return fmt.Errorf("story %d: %w", index, err)
}
