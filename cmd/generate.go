package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-liminal-kit/pkg/workflow"
)

// generateCmd は、思想家の選定から漫画の保存までを一気に実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "キャラクターマップから一コマ漫画を生成するのだ。",
	Long: `キャラクターマップと対照的な思想家を1度だけ選び、その結果を共有して
N 件のストーリーを並行生成するのだ。各ストーリーは画像と JSON レコードとして保存されるのだよ。`,
	RunE: generateCommand,
}

func init() {
	f := generateCmd.Flags()
	f.IntVarP(&opts.Count, "count", "n", 1, "並行して生成するストーリー数なのだ。")
	f.BoolVar(&opts.CancelOnFailure, "cancel-on-failure", false, "1件でも失敗したら残りのストーリーを中断するのだ。")
	f.DurationVar(&opts.RequestTimeout, "request-timeout", 0, "生成リクエスト1回あたりのタイムアウトなのだ。")
	f.DurationVar(&opts.BatchTimeout, "batch-timeout", 0, "バッチ全体のタイムアウトなのだ。")
	f.BoolVar(&opts.NoDisplay, "no-display", false, "表示用の Markdown/HTML を出力しないのだ。")
	addSourceFlags(generateCmd)
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 設定を重ねて読み込み、必須チェックをするのだ
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireAPIKey(cfg); err != nil {
		return err
	}
	if opts.Count < 1 {
		return fmt.Errorf("--count は1以上を指定してほしいのだ: %d", opts.Count)
	}

	// 2. キャラクターマップを用意するのだ
	source, err := buildSource()
	if err != nil {
		return err
	}
	cmap, err := source.CharacterMap(ctx)
	if err != nil {
		return fmt.Errorf("キャラクターマップの取得に失敗したのだ: %w", err)
	}

	slog.Info("一コマ漫画の生成を開始するのだ！",
		"provider", cfg.Provider,
		"text_model", cfg.TextModel,
		"image_model", cfg.ImageModel,
		"count", opts.Count,
		"output", cfg.OutputDir)

	// 3. ワークフローを組み立てて実行するのだ
	mgr, err := workflow.New(ctx, workflow.ManagerArgs{Config: cfg})
	if err != nil {
		return err
	}
	report, err := mgr.Run(ctx, cmap, opts.Count)
	if err != nil {
		return fmt.Errorf("ワークフロー実行中にエラーが発生したのだ: %w", err)
	}

	for _, artifact := range report.Batch.Succeeded() {
		slog.Info("漫画を保存したのだ",
			"index", artifact.Index,
			"title", artifact.Storyboard.ComicTitle,
			"comic", artifact.ComicPath,
			"record", artifact.RecordPath)
	}
	for _, failed := range report.Batch.Failed() {
		slog.Error("ストーリーの生成に失敗したのだ", "index", failed.Index, "error", failed.Err)
	}

	succeeded := len(report.Batch.Succeeded())
	slog.Info("すべての生成工程が完了したのだ！", "succeeded", succeeded, "failed", opts.Count-succeeded)
	return report.Batch.Err()
}
