package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/junyeong-ai/modmap/internal/docfmt"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Re-encode a document as JSON, YAML or TOML",
	Long: `Loads the document (so only accepted documents are converted, with
defaults filled in) and writes it in the requested format. Without --to the
output_format setting is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	addKindFlag(convertCmd)
	convertCmd.Flags().String("to", "", "output format: json, yaml or toml (default: output_format setting)")
	convertCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	kind, err := kindFlag(cmd)
	if err != nil {
		return err
	}
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	to, _ := cmd.Flags().GetString("to")
	if to == "" {
		to = e.cfg.OutputFormat
	}
	format, err := docfmt.ParseFormat(to)
	if err != nil {
		return err
	}

	res := e.validator.File(args[0], kind)
	if !res.OK() {
		return res.Err
	}
	out, err := docfmt.Encode(res.Doc, format)
	if err != nil {
		return fmt.Errorf("convert %s: %w", args[0], err)
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fmt.Errorf("convert: write %s: %w", path, err)
		}
		e.log.Debug().Str("file", path).Str("format", string(format)).Msg("converted")
		return nil
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
