package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-coach/internal/chat"
	"github.com/jonathan/resume-coach/internal/llm"
	"github.com/jonathan/resume-coach/internal/observability"
	"github.com/spf13/cobra"
)

// cliSessionID keys the terminal conversation in its single history file.
const cliSessionID = "cli"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with an assistant persona in the terminal",
	Long: `Start an interactive conversation. The history is kept in a JSON file and restored on the
next run. Type /help for the available commands.`,
	RunE: runChat,
}

var (
	chatPersona     string
	chatHistoryFile string
)

func init() {
	chatCmd.Flags().StringVarP(&chatPersona, "persona", "p", "", "Persona to use: helpful, sassy, teacher or custom")
	chatCmd.Flags().StringVar(&chatHistoryFile, "history", "chat_history.json", "Path to the history file")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	completer, err := llm.NewCompleter(ctx, cfg.LLMConfig())
	if err != nil {
		return err
	}
	defer func() { _ = completer.Close() }()

	manager, err := chat.NewManager(ctx, cliSessionID, completer, chat.NewTokenCounter(),
		chat.NewSingleFileStore(chatHistoryFile), cfg.ChatConfig())
	if err != nil {
		return fmt.Errorf("failed to start chat: %w", err)
	}
	if chatPersona != "" && chatPersona != manager.Persona() {
		if err := manager.SetPersona(ctx, chatPersona); err != nil {
			return err
		}
	}

	return chatLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), manager)
}

// chatLoop reads prompts and slash commands from in until EOF or /quit.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, manager *chat.Manager) error {
	printer := observability.NewPrinter(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	fmt.Fprintf(out, "Persona: %s. Type /help for commands.\n", manager.Persona())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			fields := strings.Fields(line)
			switch fields[0] {
			case "/quit", "/exit":
				return nil
			case "/help":
				fmt.Fprintln(out, "/persona NAME  switch persona ("+strings.Join(chat.Personas(), ", ")+")")
				fmt.Fprintln(out, "/clear         start over")
				fmt.Fprintln(out, "/history       show the conversation")
				fmt.Fprintln(out, "/tokens        show the tokens in the history")
				fmt.Fprintln(out, "/quit          leave")
			case "/persona":
				if len(fields) != 2 {
					fmt.Fprintln(out, "usage: /persona NAME")
					continue
				}
				if err := manager.SetPersona(ctx, fields[1]); err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				fmt.Fprintf(out, "Persona set to %s\n", manager.Persona())
			case "/clear":
				manager.Clear(ctx)
				fmt.Fprintln(out, "History cleared")
			case "/history":
				printer.PrintHistory(manager.Persona(), manager.History())
			case "/tokens":
				fmt.Fprintf(out, "%d tokens\n", manager.TotalTokens())
			default:
				fmt.Fprintf(out, "unknown command %s\n", fields[0])
			}
			continue
		}

		reply, err := manager.Send(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, reply)
	}
}
