package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shouni/go-liminal-kit/pkg/asset"
	"github.com/shouni/go-liminal-kit/pkg/domain"
	"github.com/shouni/go-liminal-kit/pkg/workflow"
)

var (
	captionImage string
	captionText  string
)

// captionCmd は既存の画像にキャプションを合成するのだ。生成サービスは使わないのだ。
var captionCmd = &cobra.Command{
	Use:   "caption",
	Short: "既存の画像にキャプションとウォーターマークを合成するのだ。",
	Long: `画像（URL またはローカルパス）の下にキャプション帯を足して PNG で保存するのだ。
--output-dir を省略したローカル画像は、元画像と同じディレクトリに保存するのだよ。`,
	RunE: captionCommand,
}

func init() {
	captionCmd.Flags().StringVarP(&captionImage, "image", "i", "", "合成元の画像 URL またはパスなのだ。")
	captionCmd.Flags().StringVarP(&captionText, "caption", "c", "", "合成するキャプションなのだ。")
	_ = captionCmd.MarkFlagRequired("image")
	_ = captionCmd.MarkFlagRequired("caption")
}

func captionCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.OutputDir == "" && !isRemote(captionImage) {
		if dir := asset.ResolveBaseURL(captionImage); dir != "" {
			cfg.OutputDir = dir
		}
	}

	path, err := workflow.ComposeCaption(ctx, workflow.CaptionArgs{Config: cfg}, domain.ImageRef{URL: captionImage}, captionText)
	if err != nil {
		return fmt.Errorf("キャプションの合成に失敗したのだ: %w", err)
	}

	slog.Info("キャプション付きの画像を保存したのだ", "path", path)
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
