package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/jonathan/resume-coach/internal/config"
	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash for SHELL_PASSWORD_HASH",
	Long:  "Read a password from stdin and print its bcrypt hash, using BCRYPT_COST and PASSWORD_PEPPER from the environment.",
	Args:  cobra.NoArgs,
	RunE:  runHashPassword,
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(cmd *cobra.Command, _ []string) error {
	auth, err := config.NewShellAuth()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("failed to read password: %w", err)
	}

	hash, err := auth.Hash(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
	return err
}
