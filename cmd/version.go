package cmd

import (
	"github.com/spf13/cobra"

	"github.com/junyeong-ai/modmap/internal/ui"
	"github.com/junyeong-ai/modmap/schema"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tool version and the schema version it accepts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		p := ui.NewWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr())
		p.Version(version, schema.NewRegistry().Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
