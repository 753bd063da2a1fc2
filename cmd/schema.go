package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/junyeong-ai/modmap/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of a document kind",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		raw, _ := cmd.Flags().GetString("kind")
		kind, err := schema.ParseDocumentKind(raw)
		if err != nil {
			return err
		}
		out, err := schema.JSONSchema(kind)
		if err != nil {
			return fmt.Errorf("schema %s: %w", kind, err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	},
}

func init() {
	schemaCmd.Flags().StringP("kind", "k", string(schema.KindModuleMap), "document kind: modulemap, manifest or plugin")
	rootCmd.AddCommand(schemaCmd)
}
