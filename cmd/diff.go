package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/junyeong-ai/modmap/internal/docdiff"
)

var errDocumentsDiffer = errors.New("documents differ")

var diffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Show a line diff between two documents",
	Long: `Loads both documents and diffs their canonical JSON, so formatting,
key order and omitted defaults do not show up as changes.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	addKindFlag(diffCmd)
	diffCmd.Flags().IntP("context", "C", 3, "unchanged lines to show around each change")
	diffCmd.Flags().Bool("exit-code", false, "exit non-zero when the documents differ")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	kind, err := kindFlag(cmd)
	if err != nil {
		return err
	}
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	a := e.validator.File(args[0], kind)
	if !a.OK() {
		return a.Err
	}
	b := e.validator.File(args[1], kind)
	if !b.OK() {
		return b.Err
	}

	lines, err := docdiff.Documents(a.Doc, b.Doc)
	if err != nil {
		return err
	}
	context, _ := cmd.Flags().GetInt("context")
	e.printer.Diff(args[0], args[1], docdiff.Hunks(lines, context))

	if exitCode, _ := cmd.Flags().GetBool("exit-code"); exitCode && docdiff.Changed(lines) {
		return errDocumentsDiffer
	}
	return nil
}
