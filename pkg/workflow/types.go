package workflow

import (
	"net/http"

	"github.com/shouni/go-http-kit/httpkit"

	"github.com/shouni/go-liminal-kit/pkg/adapters"
	"github.com/shouni/go-liminal-kit/pkg/config"
	"github.com/shouni/go-liminal-kit/pkg/domain"
	"github.com/shouni/go-liminal-kit/pkg/layout"
	"github.com/shouni/go-liminal-kit/pkg/prompts"
	"github.com/shouni/go-liminal-kit/pkg/publisher"
	"github.com/shouni/go-liminal-kit/pkg/runner"
)

// ManagerArgs は Manager の初期化パラメータです。
// Config 以外は省略でき、nil の場合は Config に従って生成します。
type ManagerArgs struct {
	Config        config.Config
	HTTPClient    *http.Client
	Downloader    httpkit.Requester
	Text          adapters.TextGenerator
	Image         adapters.ImageGenerator
	PromptBuilder prompts.PromptBuilder
	ImageSource   layout.ImageSource
	Writer        publisher.OutputWriter
}

// Report は1回のワークフロー実行の結果です。
type Report struct {
	Philosophers domain.PhilosopherSet
	Batch        *runner.BatchResult
}
