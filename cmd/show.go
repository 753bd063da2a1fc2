package cmd

import (
	"github.com/spf13/cobra"

	"github.com/junyeong-ai/modmap/schema"
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Summarize a module map, manifest or plugin bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	addKindFlag(showCmd)
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	kind, err := kindFlag(cmd)
	if err != nil {
		return err
	}
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	res := e.validator.File(args[0], kind)
	if !res.OK() {
		return res.Err
	}
	switch doc := res.Doc.(type) {
	case *schema.ModuleMap:
		e.printer.ModuleMap(doc)
	case *schema.ProjectManifest:
		e.printer.Manifest(doc)
	case *schema.PluginBundle:
		e.printer.Plugin(doc)
	}
	return nil
}
