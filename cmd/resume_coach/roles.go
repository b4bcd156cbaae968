package main

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-coach/internal/taxonomy"
	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the job roles and their required skills",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		for _, r := range taxonomy.Roles() {
			if _, err := fmt.Fprintf(out, "%-26s %s\n", r.Name, strings.Join(r.Skills, ", ")); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}
