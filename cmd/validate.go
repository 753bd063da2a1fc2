package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check documents against the supported schema version",
	Long: `Loads each file as a module map, manifest or plugin bundle and reports
whether it is accepted. JSON, YAML and TOML files are read; "-" reads stdin.
Exits non-zero when any document is rejected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	addKindFlag(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	kind, err := kindFlag(cmd)
	if err != nil {
		return err
	}
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	var accepted, rejected int
	for _, path := range args {
		res := e.validator.File(path, kind)
		e.printer.Verdict(res)
		if res.OK() {
			accepted++
		} else {
			rejected++
		}
	}
	e.printer.ValidateSummary(accepted, rejected)

	if rejected > 0 {
		return fmt.Errorf("%d document(s) rejected", rejected)
	}
	return nil
}
