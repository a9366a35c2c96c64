package workflow

import (
	"context"
	"fmt"

	"github.com/shouni/go-http-kit/httpkit"

	"github.com/shouni/go-liminal-kit/pkg/config"
	"github.com/shouni/go-liminal-kit/pkg/domain"
	"github.com/shouni/go-liminal-kit/pkg/layout"
	"github.com/shouni/go-liminal-kit/pkg/publisher"
)

// CaptionArgs は既存画像へのキャプション合成のパラメータです。
type CaptionArgs struct {
	Config      config.Config
	Downloader  httpkit.Requester
	ImageSource layout.ImageSource
	Writer      publisher.OutputWriter
}

// ComposeCaption は ref の画像にキャプションを合成して OutputDir に保存し、そのパスを返します。
// 生成サービスを使わないため API キーは不要です。
func ComposeCaption(ctx context.Context, args CaptionArgs, ref domain.ImageRef, caption string) (string, error) {
	cfg := args.Config
	engine, err := buildCaptionEngine(cfg, args.Downloader, args.ImageSource)
	if err != nil {
		return "", err
	}

	writer := args.Writer
	if writer == nil {
		writer = publisher.NewLocalWriter()
	}
	pub, err := publisher.NewComicPublisher(writer, publisher.Options{OutputDir: cfg.OutputDir})
	if err != nil {
		return "", fmt.Errorf("パブリッシャーの初期化に失敗しました: %w", err)
	}

	comp, err := engine.Compose(ctx, ref, caption)
	if err != nil {
		return "", err
	}
	data, err := comp.PNG()
	if err != nil {
		return "", domain.LayoutFailure(err)
	}
	return pub.SaveComic(ctx, 0, data)
}
