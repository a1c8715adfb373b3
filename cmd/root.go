package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/go-chronolens-kit/internal/config"

	"github.com/spf13/cobra"
)

// opts は各サブコマンドが共有する実行時オプションです。
var opts config.CaptureOptions

var rootCmd = &cobra.Command{
	Use:   "chronolens",
	Short: "場所と日時を指定して、過去のその瞬間を撮影する AI カメラです。",
	Long: `chronolens は「時間を撮るカメラ」です。場所（地名または緯度経度）と日付を
指定すると、その時代・その場所の情景をテキストで解析し、それをもとに
写真風の画像を合成します。

API キーは環境変数 GEMINI_API_KEY で渡してください。`,
	Example: `  # 地名と日付を指定して撮影する
  chronolens capture --location "Red Fort, Delhi" --date "1947-08-15" --time "08:30" --style journalistic

  # 組み込みプリセットで撮影する
  chronolens capture --preset red-fort-independence

  # 全スタイルを一括生成する
  chronolens capture --preset red-fort-independence --all-styles

  # Web UI を起動する
  chronolens serve`,
}

// addAppFlags は、サブコマンド間で共有するグローバルフラグを定義します。
func addAppFlags(root *cobra.Command) {
	// --- 撮影対象 ---
	root.PersistentFlags().StringVarP(&opts.Location, "location", "l", "", "撮影する場所の地名です（Nominatim で座標に解決します）。")
	root.PersistentFlags().Float64Var(&opts.Lat, "lat", 0, "撮影する場所の緯度です（--location の代わりに指定します）。")
	root.PersistentFlags().Float64Var(&opts.Lon, "lon", 0, "撮影する場所の経度です（--location の代わりに指定します）。")
	root.PersistentFlags().StringVarP(&opts.Date, "date", "d", "", "撮影する日付です（\"1947-08-15\" や \"circa 2560 BC\" など自由形式）。")
	root.PersistentFlags().StringVarP(&opts.Time, "time", "t", "", "撮影する時刻です（任意。\"08:30\" や \"dawn\" など）。")
	root.PersistentFlags().StringVarP(&opts.Style, "style", "s", "realistic", "写真表現スタイルです（styles コマンドで一覧できます）。")

	// --- プリセット入力 ---
	root.PersistentFlags().StringVar(&opts.PresetID, "preset", "", "組み込みプリセットの ID です（presets コマンドで一覧できます）。")
	root.PersistentFlags().StringVar(&opts.PresetFile, "preset-file", "", "ユーザー定義プリセットの JSON パスです（ローカル or gs://...）。")

	// --- 画像生成関連 ---
	root.PersistentFlags().StringVar(&opts.ReferenceURL, "reference-url", "", "構図の参考にする現代の写真 URL です（http(s):// または gs://）。")
	root.PersistentFlags().Int64Var(&opts.Seed, "seed", 0, "再現可能な生成のための乱数シードです。")
	root.PersistentFlags().BoolVar(&opts.AllStyles, "all-styles", false, "全スタイルを一括生成します。")
	root.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "生成画像の保存先です（ローカル or gs://...）。")

	// --- 実行制御 ---
	root.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "外部 API リクエストのタイムアウトです。")
}

// preRunAppE は、Gemini API を使うコマンドの実行前チェックです。
func preRunAppE(cmd *cobra.Command, args []string) error {
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("環境変数 GEMINI_API_KEY が設定されていません。Gemini API の利用には必須です")
	}
	return nil
}

// Execute は、アプリケーションのメインエントリポイントです。
// main.go から呼び出され、シグナルで中断可能なコンテキストの下で
// コマンドライン解析を開始します。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addAppFlags(rootCmd)
	rootCmd.AddCommand(
		captureCmd,
		serveCmd,
		presetsCmd,
		stylesCmd,
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
