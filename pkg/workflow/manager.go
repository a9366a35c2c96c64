package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shouni/go-http-kit/httpkit"
	"golang.org/x/time/rate"

	"github.com/shouni/go-liminal-kit/pkg/adapters"
	"github.com/shouni/go-liminal-kit/pkg/config"
	"github.com/shouni/go-liminal-kit/pkg/domain"
	"github.com/shouni/go-liminal-kit/pkg/generator"
	"github.com/shouni/go-liminal-kit/pkg/layout"
	"github.com/shouni/go-liminal-kit/pkg/prompts"
	"github.com/shouni/go-liminal-kit/pkg/publisher"
	"github.com/shouni/go-liminal-kit/pkg/runner"
)

// Manager は、ワークフローの各工程を担う Runner 群を構築・管理します。
type Manager struct {
	cfg       config.Config
	composer  *generator.Composer
	engine    *layout.Engine
	publisher *publisher.ComicPublisher
}

// New は、設定を基に新しい Manager を初期化します。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	cfg := args.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定が不正です: %w", err)
	}

	httpClient := args.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	text, image, err := initializeAdapters(ctx, cfg, httpClient, args.Text, args.Image)
	if err != nil {
		return nil, err
	}

	pb, err := initializePromptBuilder(args.PromptBuilder)
	if err != nil {
		return nil, err
	}

	composer, err := generator.NewComposer(
		cfg,
		text,
		image,
		pb,
		rate.NewLimiter(rate.Every(cfg.RateInterval), cfg.RateBurst),
	)
	if err != nil {
		return nil, fmt.Errorf("生成エンジンの初期化に失敗しました: %w", err)
	}

	engine, err := buildCaptionEngine(cfg, args.Downloader, args.ImageSource)
	if err != nil {
		return nil, err
	}

	writer := args.Writer
	if writer == nil {
		writer = publisher.NewLocalWriter()
	}
	pub, err := publisher.NewComicPublisher(writer, publisher.Options{
		OutputDir:    cfg.OutputDir,
		WriteDisplay: cfg.WriteDisplay,
	})
	if err != nil {
		return nil, fmt.Errorf("パブリッシャーの初期化に失敗しました: %w", err)
	}

	return &Manager{
		cfg:       cfg,
		composer:  composer,
		engine:    engine,
		publisher: pub,
	}, nil
}

// BuildPhilosopherRunner は、思想家の選定を担当する Runner を作成します。
func (m *Manager) BuildPhilosopherRunner() (PhilosopherRunner, error) {
	return generator.NewPhilosopherSelector(m.composer), nil
}

// BuildStoryRunner は、1ストーリー分の生成を担当する Runner を作成します。
func (m *Manager) BuildStoryRunner() (runner.StoryExecutor, error) {
	return runner.NewStoryRunner(runner.StoryRunnerArgs{
		Plot:       generator.NewPlotSynthesizer(m.composer),
		Storyboard: generator.NewStoryboardSynthesizer(m.composer),
		Image:      generator.NewImageSynthesizer(m.composer),
		Composer:   m.engine,
		Publisher:  m.publisher,
	})
}

// BuildBatchRunner は、複数ストーリーの並行生成を担当する Runner を作成します。
func (m *Manager) BuildBatchRunner() (BatchRunner, error) {
	story, err := m.BuildStoryRunner()
	if err != nil {
		return nil, fmt.Errorf("StoryRunner の初期化に失敗しました: %w", err)
	}
	return runner.NewBatchRunner(m.cfg, story)
}

// BuildCaptionRunner は、キャプション合成だけを行う Runner を作成します。
func (m *Manager) BuildCaptionRunner() (CaptionRunner, error) {
	return m.engine, nil
}

// Run は思想家を1度だけ選び、その結果を共有して n 件のストーリーを生成します。
// 思想家の選定に失敗した場合はどのストーリーも開始しません。
func (m *Manager) Run(ctx context.Context, cmap domain.CharacterMap, n int) (*Report, error) {
	selector, err := m.BuildPhilosopherRunner()
	if err != nil {
		return nil, err
	}
	batch, err := m.BuildBatchRunner()
	if err != nil {
		return nil, err
	}

	set, err := selector.Execute(ctx, cmap)
	if err != nil {
		return nil, fmt.Errorf("思想家の選定に失敗しました: %w", err)
	}
	slog.InfoContext(ctx, "Philosophers selected", "names", set.Names())

	result, err := batch.Run(ctx, n, set, cmap)
	if err != nil {
		return nil, err
	}
	return &Report{Philosophers: set, Batch: result}, nil
}

// initializeAdapters はプロバイダに応じて生成サービスのクライアントを初期化します。
// 引数として既存の実装が渡された場合はそれを使います。
func initializeAdapters(
	ctx context.Context,
	cfg config.Config,
	httpClient *http.Client,
	text adapters.TextGenerator,
	image adapters.ImageGenerator,
) (adapters.TextGenerator, adapters.ImageGenerator, error) {
	if text != nil && image != nil {
		return text, image, nil
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		if text == nil {
			t, err := adapters.NewGeminiTextAdapter(ctx, cfg.GeminiAPIKey, cfg.TextModel, cfg.Temperature)
			if err != nil {
				return nil, nil, err
			}
			text = t
		}
		if image == nil {
			i, err := adapters.NewGeminiImageAdapter(ctx, cfg.GeminiAPIKey, cfg.ImageModel)
			if err != nil {
				return nil, nil, err
			}
			image = i
		}
	default:
		oa, err := adapters.NewOpenAIAdapter(adapters.OpenAIOptions{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			TextModel:  cfg.TextModel,
			ImageModel: cfg.ImageModel,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("OpenAI クライアントの初期化に失敗しました: %w", err)
		}
		if text == nil {
			text = oa
		}
		if image == nil {
			image = oa
		}
	}
	return text, image, nil
}

// initializePromptBuilder は PromptBuilder を初期化します。
// 引数として既存のビルダーが渡された場合はそれを返し、nil の場合は新規作成します。
func initializePromptBuilder(pb prompts.PromptBuilder) (prompts.PromptBuilder, error) {
	if pb != nil {
		return pb, nil
	}
	builder, err := prompts.NewTextPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("TextPromptBuilder の新規作成に失敗しました: %w", err)
	}
	return builder, nil
}

// buildCaptionEngine はフォントと画像取得を準備してキャプション合成エンジンを作ります。
// downloader が nil の場合は HTTPTimeout で httpkit のクライアントを作ります。
func buildCaptionEngine(cfg config.Config, downloader httpkit.Requester, source layout.ImageSource) (*layout.Engine, error) {
	if source == nil {
		if downloader == nil {
			downloader = httpkit.New(cfg.HTTPTimeout)
		}
		source = layout.NewFetcher(downloader, cfg.HTTPTimeout, cfg.ImageCacheTTL)
	}
	typeface, err := layout.LoadTypeface(cfg.Caption.FontPath, cfg.Caption.FontSize)
	if err != nil {
		return nil, fmt.Errorf("フォントの初期化に失敗しました: %w", err)
	}
	engine, err := layout.NewEngine(source, typeface, layout.OptionsFromConfig(cfg.Caption))
	if err != nil {
		return nil, fmt.Errorf("キャプション合成エンジンの初期化に失敗しました: %w", err)
	}
	return engine, nil
}
