package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/shouni/go-liminal-kit/pkg/config"
	"github.com/shouni/go-liminal-kit/pkg/domain"
)

var (
	testMap = domain.CharacterMap{{Category: "Political Ideology", Attribute: "liberalism", Description: "Liberty."}}
	testSet = domain.PhilosopherSet{Philosophers: []domain.Philosopher{{Name: "Albert Camus", Summary: "Absurd."}}}
)

type storyFunc func(ctx context.Context, index int, set domain.PhilosopherSet, cmap domain.CharacterMap) (*domain.ComicArtifact, error)

func (f storyFunc) Run(ctx context.Context, index int, set domain.PhilosopherSet, cmap domain.CharacterMap) (*domain.ComicArtifact, error) {
	return f(ctx, index, set, cmap)
}

func TestBatchRunner_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("1件が GenerationFailure でも残り2件の結果が返ること", func(t *testing.T) {
		cause := errors.New("rate limited")
		story := storyFunc(func(ctx context.Context, index int, _ domain.PhilosopherSet, _ domain.CharacterMap) (*domain.ComicArtifact, error) {
			if index == 1 {
				return nil, domain.GenerationFailure(domain.StagePlotSynthesis, cause)
			}
			return &domain.ComicArtifact{Index: index}, nil
		})
		br, err := NewBatchRunner(config.DefaultConfig(), story)
		require.NoError(t, err)

		res, err := br.Run(context.Background(), 3, testSet, testMap)
		require.NoError(t, err)
		require.Len(t, res.Results, 3)

		for i, r := range res.Results {
			assert.Equal(t, i, r.Index)
		}
		assert.True(t, res.Results[0].OK())
		assert.True(t, res.Results[2].OK())
		assert.ErrorIs(t, res.Results[1].Err, domain.ErrGenerationFailure)
		assert.ErrorIs(t, res.Results[1].Err, cause)
		assert.Contains(t, res.Results[1].Err.Error(), "story 1")

		assert.Len(t, res.Succeeded(), 2)
		assert.Len(t, res.Failed(), 1)
		assert.ErrorIs(t, res.Err(), domain.ErrGenerationFailure)
	})

	t.Run("既定では失敗しても兄弟のワーカーはキャンセルされないこと", func(t *testing.T) {
		var canceled atomic.Int32
		story := storyFunc(func(ctx context.Context, index int, _ domain.PhilosopherSet, _ domain.CharacterMap) (*domain.ComicArtifact, error) {
			if index == 0 {
				return nil, domain.SchemaViolation(domain.StageStoryboardSynthesis, errors.New("missing comic_title"))
			}
			select {
			case <-ctx.Done():
				canceled.Add(1)
				return nil, ctx.Err()
			case <-time.After(50 * time.Millisecond):
				return &domain.ComicArtifact{Index: index}, nil
			}
		})
		br, err := NewBatchRunner(config.DefaultConfig(), story)
		require.NoError(t, err)

		res, err := br.Run(context.Background(), 4, testSet, testMap)
		require.NoError(t, err)
		assert.Equal(t, int32(0), canceled.Load())
		assert.Len(t, res.Succeeded(), 3)
		assert.ErrorIs(t, res.Results[0].Err, domain.ErrSchemaViolation)
	})

	t.Run("CancelOnFailure では失敗時に兄弟がキャンセルされること", func(t *testing.T) {
		story := storyFunc(func(ctx context.Context, index int, _ domain.PhilosopherSet, _ domain.CharacterMap) (*domain.ComicArtifact, error) {
			if index == 0 {
				return nil, domain.GenerationFailure(domain.StageImageSynthesis, errors.New("boom"))
			}
			select {
			case <-ctx.Done():
				return nil, domain.GenerationFailure(domain.StagePlotSynthesis, ctx.Err())
			case <-time.After(5 * time.Second):
				return &domain.ComicArtifact{Index: index}, nil
			}
		})
		cfg := config.DefaultConfig()
		cfg.CancelOnFailure = true
		br, err := NewBatchRunner(cfg, story)
		require.NoError(t, err)

		start := time.Now()
		res, err := br.Run(context.Background(), 3, testSet, testMap)
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 2*time.Second)
		assert.Len(t, res.Failed(), 3)
		assert.ErrorIs(t, res.Results[2].Err, context.Canceled)
	})

	t.Run("BatchTimeout を超えたストーリーは失敗として返ること", func(t *testing.T) {
		story := storyFunc(func(ctx context.Context, index int, _ domain.PhilosopherSet, _ domain.CharacterMap) (*domain.ComicArtifact, error) {
			<-ctx.Done()
			return nil, domain.GenerationFailure(domain.StagePlotSynthesis, ctx.Err())
		})
		cfg := config.DefaultConfig()
		cfg.BatchTimeout = 20 * time.Millisecond
		br, err := NewBatchRunner(cfg, story)
		require.NoError(t, err)

		res, err := br.Run(context.Background(), 2, testSet, testMap)
		require.NoError(t, err)
		for _, r := range res.Results {
			assert.ErrorIs(t, r.Err, context.DeadlineExceeded)
		}
	})

	t.Run("ワーカーに渡すマップはコピーであること", func(t *testing.T) {
		story := storyFunc(func(_ context.Context, index int, _ domain.PhilosopherSet, cmap domain.CharacterMap) (*domain.ComicArtifact, error) {
			cmap[0].Attribute = "mutated"
			return &domain.ComicArtifact{Index: index}, nil
		})
		br, err := NewBatchRunner(config.DefaultConfig(), story)
		require.NoError(t, err)

		cmap := testMap.Clone()
		_, err = br.Run(context.Background(), 3, testSet, cmap)
		require.NoError(t, err)
		assert.Equal(t, "liberalism", cmap[0].Attribute)
	})

	t.Run("不正な入力はエラーになること", func(t *testing.T) {
		br, err := NewBatchRunner(config.DefaultConfig(), storyFunc(nil))
		require.NoError(t, err)

		_, err = br.Run(context.Background(), 0, testSet, testMap)
		assert.Error(t, err)
		_, err = br.Run(context.Background(), 1, testSet, nil)
		assert.ErrorIs(t, err, domain.ErrEmptyCharacterMap)
		_, err = br.Run(context.Background(), 1, domain.PhilosopherSet{}, testMap)
		assert.Error(t, err)
	})
}

func TestNewBatchRunner_RequiresStory(t *testing.T) {
	_, err := NewBatchRunner(config.DefaultConfig(), nil)
	assert.Error(t, err)
}
