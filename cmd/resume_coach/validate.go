package main

import (
	"fmt"

	"github.com/jonathan/resume-coach/internal/schemas"
	embedded "github.com/jonathan/resume-coach/schemas"
	"github.com/spf13/cobra"
)

var validateSchema string

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Validate a JSON file against an embedded schema",
	Long:  "Validate an analysis result or a chat history file against its JSON Schema.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, ok := schemaNames[validateSchema]
		if !ok {
			return fmt.Errorf("unknown schema %q (use analysis or history)", validateSchema)
		}
		if err := schemas.ValidateFileAgainst(name, args[0]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is a valid %s\n", args[0], validateSchema)
		return err
	},
}

var schemaNames = map[string]string{
	"analysis": embedded.AnalysisResult,
	"history":  embedded.ChatHistory,
}

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "analysis", "Schema to validate against: analysis or history")
	rootCmd.AddCommand(validateCmd)
}
