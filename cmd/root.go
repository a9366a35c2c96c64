package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shouni/go-liminal-kit/internal/config"
	libconfig "github.com/shouni/go-liminal-kit/pkg/config"
)

const appName = "liminal"

// opts はすべてのサブコマンドで共有するフラグの受け皿なのだ。
var (
	opts       config.GenerateOptions
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "思想家の対話から一コマ漫画を生成するのだ。",
	Long: `あなたの信条（キャラクターマップ）をもとに、対照的な思想家を選び、
プロット・絵コンテ・画像を生成して、キャプション付きの一コマ漫画に仕上げるのだ。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	// --- 設定ファイル ---
	flags.StringVar(&configFile, "config", "", "YAML 設定ファイルのパスなのだ（既定は LIMINAL_CONFIG または liminal.yml）。")

	// --- AIモデル・挙動設定 ---
	flags.StringVar(&opts.Provider, "provider", "", "生成サービス（openai / gemini）なのだ。")
	flags.StringVar(&opts.TextModel, "model", "", "テキスト生成モデル名なのだ。")
	flags.StringVar(&opts.ImageModel, "image-model", "", "画像生成モデル名なのだ。")
	flags.DurationVar(&opts.HTTPTimeout, "http-timeout", 0, "HTTPリクエストのタイムアウトなのだ。")

	// --- 生成結果の出力設定 ---
	flags.StringVarP(&opts.OutputDir, "output-dir", "o", "", "成果物を保存するディレクトリなのだ。")

	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "デバッグログを出力するのだ。")
}

// preRunAppE は、コマンド実行前にロガーと .env を準備するのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// .env は任意なのだ。無ければ環境変数だけを使うのだ。
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn(".env の読み込みに失敗したのだ", "error", err)
	}
	return nil
}

// loadConfig は環境変数・設定ファイル・フラグを重ねてライブラリ用の設定を作るのだ。
func loadConfig() (*config.Config, libconfig.Config, error) {
	appCfg := config.LoadConfig()
	if configFile != "" {
		appCfg.ConfigFile = configFile
	}
	appCfg.Options = opts

	cfg, err := appCfg.Resolve()
	if err != nil {
		return nil, libconfig.Config{}, err
	}
	return appCfg, cfg, nil
}

// requireAPIKey は生成サービスを使うコマンドの前に API キーの存在をチェックするのだ。
func requireAPIKey(cfg libconfig.Config) error {
	switch cfg.Provider {
	case libconfig.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini の利用には必須なのだ")
		}
	case libconfig.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return fmt.Errorf("エラー: 環境変数 OPENAI_API_KEY が設定されていません。OpenAI の利用には必須なのだ")
		}
	default:
		return fmt.Errorf("未対応のプロバイダなのだ: %q", cfg.Provider)
	}
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(
		generateCmd,
		philosophersCmd,
		captionCmd,
		choicesCmd,
	)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
