package workflow

import (
	"context"

	"github.com/shouni/go-liminal-kit/pkg/domain"
	"github.com/shouni/go-liminal-kit/pkg/layout"
	"github.com/shouni/go-liminal-kit/pkg/runner"
)

// Workflow は、コミック生成ワークフローの各工程を担当する Runner を構築するためのインターフェースを定義します。
type Workflow interface {
	BuildPhilosopherRunner() (PhilosopherRunner, error)
	BuildStoryRunner() (runner.StoryExecutor, error)
	BuildBatchRunner() (BatchRunner, error)
	BuildCaptionRunner() (CaptionRunner, error)
}

// PhilosopherRunner は、キャラクターマップと対照的な思想家をバッチ開始前に1度だけ選ぶ責務を持ちます。
type PhilosopherRunner interface {
	Execute(ctx context.Context, cmap domain.CharacterMap) (domain.PhilosopherSet, error)
}

// BatchRunner は、N 件のストーリーを並行して生成し、インスタンスごとの結果を返す責務を持ちます。
type BatchRunner interface {
	Run(ctx context.Context, n int, set domain.PhilosopherSet, cmap domain.CharacterMap) (*runner.BatchResult, error)
}

// CaptionRunner は、既存の画像にキャプションを合成する責務を持ちます。
type CaptionRunner interface {
	Compose(ctx context.Context, ref domain.ImageRef, caption string) (*layout.Composition, error)
}
