package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/junyeong-ai/modmap/internal/render"
	"github.com/junyeong-ai/modmap/internal/telemetry"
	"github.com/junyeong-ai/modmap/schema"
)

var renderCmd = &cobra.Command{
	Use:   "render <plugin-file>",
	Short: "Write a plugin bundle out as agent, rule and skill markdown files",
	Long: `Loads a plugin bundle and writes one markdown file with YAML frontmatter
per agent (agents/<name>.md), rule (rules/<category>/<name>.md) and skill
(skills/<name>/SKILL.md, plus any additional files) under --out.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("out", "o", "", "directory to write into")
	renderCmd.Flags().Bool("dry-run", false, "list the files without writing them")
	_ = renderCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	res := e.validator.File(args[0], schema.KindPlugin)
	if !res.OK() {
		return res.Err
	}
	bundle, ok := res.Doc.(*schema.PluginBundle)
	if !ok {
		return fmt.Errorf("render: %s is not a plugin bundle", args[0])
	}

	files, err := render.Bundle(bundle)
	if err != nil {
		return fmt.Errorf("render %s: %w", args[0], err)
	}

	out, _ := cmd.Flags().GetString("out")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if !dryRun {
		if err := render.Write(out, files); err != nil {
			return err
		}
		e.emit(telemetry.KindRender, map[string]any{
			"source": args[0],
			"dir":    out,
			"files":  len(files),
		})
	}
	e.printer.Rendered(out, files, dryRun)
	return nil
}
