package cmd

import (
	"fmt"

	"github.com/shouni/go-chronolens-kit/pkg/domain"

	"github.com/spf13/cobra"
)

// stylesCmd は、--style で指定できる写真表現スタイルの一覧を表示します。
var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "指定できる写真表現スタイルの一覧を表示します。",
	RunE:  stylesCommand,
}

func stylesCommand(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, style := range domain.Styles() {
		fmt.Fprintf(out, "%-14s %s\n", style, style.Label())
	}
	return nil
}
