package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-chronolens-kit/internal/builder"
	"github.com/shouni/go-chronolens-kit/internal/config"
	"github.com/shouni/go-chronolens-kit/pkg/domain"
	"github.com/shouni/go-chronolens-kit/pkg/presets"
	"github.com/shouni/go-chronolens-kit/pkg/render"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// captureCmd は、1 回の撮影（情景解析 → 画像合成 → 保存）を実行します。
var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "場所と日時を指定して過去の情景を撮影します。",
	Long: `場所と日付から情景をテキストで解析し、それをもとに画像を合成して保存します。
場所は --location（地名検索）、--lat/--lon（座標）、--preset のいずれかで指定します。`,
	PreRunE: preRunAppE,
	RunE:    captureCommand,
}

func captureCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	opts.SeedSet = cmd.Flags().Changed("seed")

	cfg := config.LoadConfig()
	cfg.Options = opts

	appCtx, err := builder.NewAppContext(ctx, cfg, opts)
	if err != nil {
		return err
	}

	req, err := resolveRequest(ctx, cmd, appCtx)
	if err != nil {
		return err
	}

	if opts.AllStyles {
		return captureAllStyles(ctx, cmd, appCtx, req)
	}

	slog.Info("撮影を開始します",
		"location", req.Location.Label(),
		"date", req.Date,
		"style", req.Style)

	img, err := appCtx.Lens.Capture(ctx, req)
	if err != nil {
		return fmt.Errorf("撮影に失敗しました: %w", err)
	}
	if err := saveImage(ctx, appCtx, img); err != nil {
		return err
	}
	if err := saveStory(ctx, appCtx, img); err != nil {
		return err
	}
	printStory(cmd, img)
	return nil
}

// captureAllStyles は全スタイルを順番に撮影します。Lens は同時に 1 件しか
// 撮影できないため並列化はせず、レートリミッタで間隔を空けます。
// 参照画像の File API 登録は AssetCore がキャッシュするので、2 回目以降の
// スタイルでは再アップロードされません。
func captureAllStyles(ctx context.Context, cmd *cobra.Command, appCtx *builder.AppContext, req domain.GenerationRequest) error {
	limiter := rate.NewLimiter(rate.Every(config.DefaultRateInterval), 1)

	var succeeded int
	for _, style := range domain.Styles() {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		r := req
		r.Style = style
		slog.Info("撮影を開始します", "style", style, "location", r.Location.Label(), "date", r.Date)

		img, err := appCtx.Lens.Capture(ctx, r)
		if err != nil {
			slog.Warn("スタイルの撮影に失敗しました", "style", style, "error", err)
			continue
		}
		if err := saveImage(ctx, appCtx, img); err != nil {
			slog.Warn("画像の保存に失敗しました", "style", style, "error", err)
			continue
		}
		if err := saveStory(ctx, appCtx, img); err != nil {
			slog.Warn("物語の保存に失敗しました", "style", style, "error", err)
		}
		succeeded++
	}

	// バッチで使った参照画像を File API から掃除する
	if req.ReferenceURL != "" {
		if err := appCtx.Assets.ForgetReference(ctx, req.ReferenceURL); err != nil {
			slog.Warn("参照画像の削除に失敗しました", "error", err)
		}
	}

	if succeeded == 0 {
		return fmt.Errorf("すべてのスタイルで撮影に失敗しました")
	}
	slog.Info("一括生成が完了しました", "succeeded", succeeded, "total", len(domain.Styles()))
	return nil
}

// resolveRequest は、プリセットとフラグから撮影リクエストを組み立てます。
// プリセット指定時もフラグで明示された値が優先されます。
func resolveRequest(ctx context.Context, cmd *cobra.Command, appCtx *builder.AppContext) (domain.GenerationRequest, error) {
	var req domain.GenerationRequest

	if opts.PresetID != "" {
		preset, err := findPreset(ctx, appCtx)
		if err != nil {
			return req, err
		}
		req = preset.Request
	}

	// 場所: --location（地名検索） > --lat/--lon > プリセット
	switch {
	case opts.Location != "":
		place, err := appCtx.Geocoder.Forward(ctx, opts.Location)
		if err != nil {
			return req, fmt.Errorf("場所 %q を解決できませんでした: %w", opts.Location, err)
		}
		req.Location = place.Location()
	case cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon"):
		req.Location = domain.LocationData{
			Coordinates: domain.Coordinates{Lat: opts.Lat, Lon: opts.Lon},
		}
	}

	if opts.Date != "" {
		req.Date = opts.Date
	}
	if opts.Time != "" {
		req.Time = opts.Time
	}
	if cmd.Flags().Changed("style") || req.Style == "" {
		style, err := domain.ParseStyle(opts.Style)
		if err != nil {
			return req, err
		}
		req.Style = style
	}
	if opts.ReferenceURL != "" {
		req.ReferenceURL = opts.ReferenceURL
	}
	if opts.SeedSet {
		seed := opts.Seed
		req.Seed = &seed
	}

	if req.Location.Name == "" && req.Location.Coordinates == (domain.Coordinates{}) {
		return req, fmt.Errorf("場所を指定してください（--location、--lat/--lon、または --preset）")
	}
	if strings.TrimSpace(req.Date) == "" {
		return req, fmt.Errorf("日付を指定してください（--date）")
	}
	return req, nil
}

// findPreset は ID でプリセットを引きます。--preset-file 指定時は
// そのファイル内を優先して検索し、なければ組み込みカタログを見ます。
func findPreset(ctx context.Context, appCtx *builder.AppContext) (*presets.Preset, error) {
	if opts.PresetFile != "" {
		list, err := presets.LoadFile(ctx, appCtx.Reader, opts.PresetFile)
		if err != nil {
			return nil, err
		}
		for i := range list {
			if list[i].ID == opts.PresetID {
				return &list[i], nil
			}
		}
	}
	return presets.Find(opts.PresetID)
}

// saveImage は生成結果を出力先（ローカル or gs://）へ書き込みます。
func saveImage(ctx context.Context, appCtx *builder.AppContext, img *domain.GeneratedImage) error {
	data, mimeType, err := render.ParseDataURL(img.ImageURL)
	if err != nil {
		return fmt.Errorf("生成画像の取り出しに失敗しました: %w", err)
	}

	path := outputPath(img, extensionFor(mimeType))
	if err := appCtx.Writer.Write(ctx, path, bytes.NewReader(data), mimeType); err != nil {
		return fmt.Errorf("画像の保存に失敗しました: %w", err)
	}
	slog.Info("画像を保存しました", "path", path, "bytes", len(data))
	return nil
}

// saveStory は物語と使用プロンプトを画像と対になる Markdown に書き込みます。
func saveStory(ctx context.Context, appCtx *builder.AppContext, img *domain.GeneratedImage) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n\n", img.Location.Label(), img.Style.Label())
	fmt.Fprintf(&b, "生成日時: %s\n\n", img.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "## 物語\n\n%s\n\n", img.Story)
	fmt.Fprintf(&b, "## 情景描写\n\n%s\n\n", img.Description)
	fmt.Fprintf(&b, "## 使用プロンプト\n\n%s\n", img.PromptUsed)

	path := outputPath(img, ".md")
	if err := appCtx.Writer.Write(ctx, path, strings.NewReader(b.String()), "text/markdown"); err != nil {
		return fmt.Errorf("物語の保存に失敗しました: %w", err)
	}
	slog.Info("物語を保存しました", "path", path)
	return nil
}

func outputPath(img *domain.GeneratedImage, ext string) string {
	name := fmt.Sprintf(config.DefaultOutputPattern, img.Style, img.ID) + ext
	return strings.TrimSuffix(opts.OutputDir, "/") + "/" + name
}

// printStory は生成された物語と描写を標準出力へ表示します。
func printStory(cmd *cobra.Command, img *domain.GeneratedImage) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "場所:     %s\n", img.Location.Label())
	fmt.Fprintf(out, "スタイル: %s\n", img.Style.Label())
	fmt.Fprintln(out)
	fmt.Fprintln(out, img.Story)
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
