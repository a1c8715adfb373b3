package cmd

import (
	"fmt"

	"github.com/shouni/go-chronolens-kit/internal/builder"
	"github.com/shouni/go-chronolens-kit/internal/config"
	"github.com/shouni/go-chronolens-kit/pkg/presets"

	"github.com/spf13/cobra"
)

// presetsCmd は、利用できる撮影プリセットの一覧を表示します。
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "撮影プリセットの一覧を表示します。",
	Long: `組み込みの撮影プリセット（歴史上の有名な瞬間）を一覧します。
--preset-file を指定すると、ユーザー定義のプリセットも合わせて表示します。`,
	RunE: presetsCommand,
}

func presetsCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	list, err := presets.Catalog()
	if err != nil {
		return err
	}

	if opts.PresetFile != "" {
		cfg := config.LoadConfig()
		appCtx, err := builder.NewServerContext(ctx, cfg)
		if err != nil {
			return err
		}
		userList, err := presets.LoadFile(ctx, appCtx.Reader, opts.PresetFile)
		if err != nil {
			return fmt.Errorf("プリセットファイルの読み込みに失敗しました: %w", err)
		}
		list = append(list, userList...)
	}

	out := cmd.OutOrStdout()
	for _, p := range list {
		fmt.Fprintf(out, "%-26s %s\n", p.ID, p.Title)
		fmt.Fprintf(out, "    場所: %s  日付: %s", p.Request.Location.Label(), p.Request.Date)
		if p.Request.Time != "" {
			fmt.Fprintf(out, "  時刻: %s", p.Request.Time)
		}
		fmt.Fprintf(out, "  スタイル: %s\n", p.Request.Style)
		if p.Note != "" {
			fmt.Fprintf(out, "    %s\n", p.Note)
		}
		fmt.Fprintln(out)
	}
	return nil
}
