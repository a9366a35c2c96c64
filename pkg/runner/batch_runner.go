package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-liminal-kit/pkg/config"
	"github.com/shouni/go-liminal-kit/pkg/domain"
)

// StoryResult は1ストーリー分の結果です。Artifact と Err のどちらか一方だけが設定されます。
type StoryResult struct {
	Index    int
	Artifact *domain.ComicArtifact
	Err      error
}

// OK は成功したかどうかを返します。
func (r StoryResult) OK() bool {
	return r.Err == nil && r.Artifact != nil
}

// BatchResult はインデックス順に並んだ N 件の結果です。
type BatchResult struct {
	Results []StoryResult
}

// Succeeded は成功した成果物をインデックス順に返します。
func (b *BatchResult) Succeeded() []*domain.ComicArtifact {
	var out []*domain.ComicArtifact
	for _, r := range b.Results {
		if r.OK() {
			out = append(out, r.Artifact)
		}
	}
	return out
}

// Failed は失敗した結果をインデックス順に返します。
func (b *BatchResult) Failed() []StoryResult {
	var out []StoryResult
	for _, r := range b.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Err は全ての失敗をまとめたエラーを返します。全件成功なら nil です。
func (b *BatchResult) Err() error {
	var errs []error
	for _, r := range b.Failed() {
		errs = append(errs, r.Err)
	}
	return errors.Join(errs...)
}

// BatchRunner は N 件のストーリーを並行して実行し、結果を集めます。
// 既定では1件の失敗が他のストーリーを止めることはありません。
type BatchRunner struct {
	story           StoryExecutor
	timeout         time.Duration
	cancelOnFailure bool
}

// NewBatchRunner は BatchRunner を初期化します。
func NewBatchRunner(cfg config.Config, story StoryExecutor) (*BatchRunner, error) {
	if story == nil {
		return nil, errors.New("StoryExecutor は必須です")
	}
	return &BatchRunner{
		story:           story,
		timeout:         cfg.BatchTimeout,
		cancelOnFailure: cfg.CancelOnFailure,
	}, nil
}

// Run は n 件のストーリーを同時に実行します。
// 戻り値のエラーは入力が不正な場合だけで、各ストーリーの失敗は BatchResult に入ります。
func (r *BatchRunner) Run(
	ctx context.Context,
	n int,
	set domain.PhilosopherSet,
	cmap domain.CharacterMap,
) (*BatchResult, error) {
	if n < 1 {
		return nil, fmt.Errorf("ストーリー数は1以上である必要があります: %d", n)
	}
	if err := cmap.Validate(); err != nil {
		return nil, fmt.Errorf("キャラクターマップが不正です: %w", err)
	}
	if len(set.Philosophers) == 0 {
		return nil, errors.New("思想家が選ばれていません")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slog.InfoContext(ctx, "Starting batch", "stories", n, "philosophers", len(set.Philosophers))
	startTime := time.Now()

	results := make([]StoryResult, n)
	var eg errgroup.Group
	eg.SetLimit(n)

	for i := 0; i < n; i++ {
		index := i
		// 各ワーカーには値のコピーを渡す
		workerMap := cmap.Clone()
		workerSet := domain.PhilosopherSet{Philosophers: append([]domain.Philosopher(nil), set.Philosophers...)}

		eg.Go(func() error {
			artifact, err := r.story.Run(ctx, index, workerSet, workerMap)
			if err == nil && artifact == nil {
				err = errors.New("story returned no artifact")
			}
			if err != nil {
				results[index] = StoryResult{Index: index, Err: storyError(index, err)}
				slog.WarnContext(ctx, "Story failed",
					"story_index", index,
					"stage", domain.FailedStage(err),
					"retryable", domain.IsRetryable(err),
					"error", err,
				)
				if r.cancelOnFailure {
					cancel()
				}
				// 他のワーカーを止めないように nil を返すのだ
				return nil
			}
			results[index] = StoryResult{Index: index, Artifact: artifact}
			return nil
		})
	}
	_ = eg.Wait()

	res := &BatchResult{Results: results}
	slog.InfoContext(ctx, "Batch completed",
		"succeeded", len(res.Succeeded()),
		"failed", len(res.Failed()),
		"duration", time.Since(startTime).Round(time.Millisecond),
	)
	return res, nil
}
