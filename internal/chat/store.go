package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonathan/resume-coach/internal/schemas"
	"github.com/jonathan/resume-coach/internal/types"
	embedded "github.com/jonathan/resume-coach/schemas"
)

// Store persists chat histories by session ID.
type Store interface {
	// Load returns the stored history, or ErrNotFound.
	Load(ctx context.Context, sessionID string) ([]types.Message, error)
	Save(ctx context.Context, sessionID string, messages []types.Message) error
}

// FileStore keeps each history as a JSON array of messages on disk.
type FileStore struct {
	dir  string
	path string
}

// NewFileStore stores one file per session under dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// NewSingleFileStore stores every session in the same file.
func NewSingleFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// PathFor returns the file backing a session.
func (s *FileStore) PathFor(sessionID string) string {
	if s.path != "" {
		return s.path
	}
	return filepath.Join(s.dir, sessionID+".json")
}

// Load implements Store. Histories that fail schema validation are reported as errors.
func (s *FileStore) Load(_ context.Context, sessionID string) ([]types.Message, error) {
	path := s.PathFor(sessionID)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	if err := schemas.ValidateBytes(embedded.ChatHistory, data); err != nil {
		return nil, fmt.Errorf("invalid history file %s: %w", path, err)
	}

	var messages []types.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return messages, nil
}

// Save implements Store. The file is replaced atomically.
func (s *FileStore) Save(_ context.Context, sessionID string, messages []types.Message) error {
	path := s.PathFor(sessionID)
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close history file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// MemoryStore keeps histories in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]types.Message
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]types.Message)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, sessionID string) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]types.Message(nil), messages...), nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, sessionID string, messages []types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append([]types.Message(nil), messages...)
	return nil
}
