package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-coach/internal/chat"
	"github.com/jonathan/resume-coach/internal/types"
)

// ChatStore implements chat.Store on the chat_histories table.
type ChatStore struct {
	db *DB
}

// NewChatStore creates a ChatStore.
func NewChatStore(db *DB) *ChatStore {
	return &ChatStore{db: db}
}

// Load returns a session's history, or chat.ErrNotFound.
func (s *ChatStore) Load(ctx context.Context, sessionID string) ([]types.Message, error) {
	var raw []byte
	err := s.db.pool.QueryRow(ctx,
		`SELECT messages FROM chat_histories WHERE session_id = $1`,
		sessionID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, chat.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	var messages []types.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat history: %w", err)
	}
	return messages, nil
}

// Save upserts a session's history.
func (s *ChatStore) Save(ctx context.Context, sessionID string, messages []types.Message) error {
	jsonBytes, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal chat history: %w", err)
	}

	_, err = s.db.pool.Exec(ctx,
		`INSERT INTO chat_histories (session_id, messages)
		 VALUES ($1, $2)
		 ON CONFLICT (session_id) DO UPDATE SET messages = $2, updated_at = NOW()`,
		sessionID, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save chat history: %w", err)
	}
	return nil
}

// Delete removes a session's history.
func (s *ChatStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.pool.Exec(ctx, `DELETE FROM chat_histories WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete chat history: %w", err)
	}
	return nil
}
