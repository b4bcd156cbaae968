package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jonathan/resume-coach/internal/chat"
	"github.com/jonathan/resume-coach/internal/llm"
	"github.com/jonathan/resume-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type echoCompleter struct {
	mu    sync.Mutex
	calls int
}

func (c *echoCompleter) Complete(_ context.Context, messages []types.Message, _ llm.Options) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return "echo: " + messages[len(messages)-1].Content, nil
}

func (c *echoCompleter) Close() error { return nil }

func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestChatLoop(t *testing.T) {
	completer := &echoCompleter{}
	manager, err := chat.NewManager(context.Background(), cliSessionID, completer, chat.EstimateCounter{},
		chat.NewSingleFileStore(t.TempDir()+"/chat_history.json"), chat.DefaultConfig())
	require.NoError(t, err)

	input := strings.Join([]string{
		"hello",
		"/persona sassy",
		"/persona pirate",
		"/history",
		"/tokens",
		"/bogus",
		"/clear",
		"/quit",
		"never sent",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, chatLoop(context.Background(), strings.NewReader(input), &out, manager))

	output := out.String()
	assert.Contains(t, output, "echo: hello")
	assert.Contains(t, output, "Persona set to sassy")
	assert.Contains(t, output, "error: unknown persona")
	assert.Contains(t, output, "CHAT HISTORY")
	assert.Contains(t, output, "unknown command /bogus")
	assert.Contains(t, output, "History cleared")
	assert.NotContains(t, output, "never sent")

	assert.Equal(t, 1, completer.calls)
	assert.Equal(t, chat.PersonaSassy, manager.Persona())
	assert.Len(t, manager.History(), 1)
}

func TestChatLoop_EOFEndsSession(t *testing.T) {
	manager, err := chat.NewManager(context.Background(), cliSessionID, &echoCompleter{}, nil, nil, chat.DefaultConfig())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, chatLoop(context.Background(), strings.NewReader("hi\n"), &out, manager))
	assert.Contains(t, out.String(), "echo: hi")
}

func TestRolesCommand(t *testing.T) {
	output, err := executeCommand(t, "", "roles")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 15)
	assert.True(t, strings.HasPrefix(lines[0], "python developer"))
	assert.Contains(t, lines[0], "django, flask")
}

func TestHashPasswordCommand(t *testing.T) {
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("PASSWORD_PEPPER", "")

	output, err := executeCommand(t, "hunter2\n", "hash-password")
	require.NoError(t, err)

	hash := strings.TrimSpace(output)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	valid := writeFile(t, dir, "history.json", `[{"role": "system", "content": "You are a helpful, polite assistant."}]`)

	output, err := executeCommand(t, "", "validate", "--schema", "history", valid)
	require.NoError(t, err)
	assert.Contains(t, output, "is a valid history")

	invalid := writeFile(t, dir, "bad.json", `{"role": "system"}`)
	_, err = executeCommand(t, "", "validate", "--schema", "history", invalid)
	assert.Error(t, err)

	_, err = executeCommand(t, "", "validate", "--schema", "resume", valid)
	assert.ErrorContains(t, err, "unknown schema")
}

func TestAnalyzeCommand_RequiresRole(t *testing.T) {
	_, err := executeCommand(t, "", "analyze", "cv.pdf")
	assert.ErrorContains(t, err, "role")
}
