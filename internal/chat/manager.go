package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/jonathan/resume-coach/internal/llm"
	"github.com/jonathan/resume-coach/internal/types"
)

// DefaultTokenBudget is the maximum number of tokens kept in a history.
const DefaultTokenBudget = 10000

// Config holds the per-session chat settings.
type Config struct {
	Options             llm.Options
	TokenBudget         int
	CustomSystemMessage string
	DefaultPersona      string
}

// DefaultConfig returns the default chat settings for the Groq provider.
func DefaultConfig() Config {
	return Config{
		Options:             llm.DefaultOptions(llm.ProviderGroq),
		TokenBudget:         DefaultTokenBudget,
		CustomSystemMessage: DefaultCustomSystemMessage,
		DefaultPersona:      PersonaHelpful,
	}
}

// Manager owns one conversation. Turns are serialized: a Send holds the lock until the reply is stored.
type Manager struct {
	mu        sync.Mutex
	sessionID string
	completer llm.Completer
	counter   TokenCounter
	store     Store
	cfg       Config
	messages  map[string]string
	persona   string
	history   []types.Message
}

// NewManager creates a manager and restores the session's history from store.
// A missing or unreadable history starts a fresh conversation.
func NewManager(ctx context.Context, sessionID string, completer llm.Completer, counter TokenCounter, store Store, cfg Config) (*Manager, error) {
	if completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if counter == nil {
		counter = EstimateCounter{}
	}
	if store == nil {
		store = NewMemoryStore()
	}
	if cfg.TokenBudget <= 0 {
		cfg.TokenBudget = DefaultTokenBudget
	}

	m := &Manager{
		sessionID: sessionID,
		completer: completer,
		counter:   counter,
		store:     store,
		cfg:       cfg,
		messages:  systemMessages(cfg.CustomSystemMessage),
	}

	m.persona = cfg.DefaultPersona
	if m.persona == "" {
		m.persona = PersonaHelpful
	}
	if _, ok := m.messages[m.persona]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPersona, m.persona)
	}

	m.load(ctx)
	return m, nil
}

func (m *Manager) load(ctx context.Context) {
	history, err := m.store.Load(ctx, m.sessionID)
	switch {
	case errors.Is(err, ErrNotFound):
		m.reset()
		return
	case err != nil:
		log.Printf("[chat] discarding unreadable history for session %s: %v", m.sessionID, err)
		m.reset()
		return
	case len(history) == 0 || history[0].Role != types.RoleSystem:
		log.Printf("[chat] discarding malformed history for session %s", m.sessionID)
		m.reset()
		return
	}

	m.history = history
	for _, name := range personaOrder {
		if m.messages[name] == history[0].Content {
			m.persona = name
			break
		}
	}
}

func (m *Manager) reset() {
	m.history = []types.Message{{Role: types.RoleSystem, Content: m.messages[m.persona]}}
}

// SessionID returns the session this manager belongs to.
func (m *Manager) SessionID() string {
	return m.sessionID
}

// Persona returns the active persona.
func (m *Manager) Persona() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persona
}

// History returns a copy of the conversation, system message first.
func (m *Manager) History() []types.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Message(nil), m.history...)
}

// TotalTokens returns the token count of every message in the history.
func (m *Manager) TotalTokens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalTokens()
}

func (m *Manager) totalTokens() int {
	total := 0
	for _, msg := range m.history {
		total += m.counter.Count(msg.Content)
	}
	return total
}

// enforceBudget drops the oldest non-system messages until the history fits the budget.
func (m *Manager) enforceBudget() {
	for m.totalTokens() > m.cfg.TokenBudget && len(m.history) > 1 {
		m.history = append(m.history[:1], m.history[2:]...)
	}
}

// Send appends prompt, asks the completer for a reply and records it.
// If the completion fails the prompt is removed again and the error returned.
func (m *Manager) Send(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyMessage
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.counter.Count(m.history[0].Content)+m.counter.Count(prompt) > m.cfg.TokenBudget {
		return "", ErrOverBudget
	}

	m.history = append(m.history, types.Message{Role: types.RoleUser, Content: prompt})
	m.enforceBudget()

	request := append([]types.Message(nil), m.history...)
	reply, err := m.completer.Complete(ctx, request, m.cfg.Options)
	if err != nil {
		m.history = m.history[:len(m.history)-1]
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}

	m.history = append(m.history, types.Message{Role: types.RoleAssistant, Content: reply})
	m.persist(ctx)
	return reply, nil
}

// SetPersona switches persona and replaces the system message. The history is otherwise kept.
func (m *Manager) SetPersona(ctx context.Context, persona string) error {
	msg, ok := m.messages[persona]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPersona, persona)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.persona = persona
	m.history[0] = types.Message{Role: types.RoleSystem, Content: msg}
	m.persist(ctx)
	return nil
}

// Clear resets the conversation to the active persona's system message.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reset()
	m.persist(ctx)
}

func (m *Manager) persist(ctx context.Context) {
	if err := m.store.Save(ctx, m.sessionID, m.history); err != nil {
		log.Printf("[chat] failed to save history for session %s: %v", m.sessionID, err)
	}
}
