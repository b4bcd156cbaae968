package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-coach/internal/chat"
	"github.com/jonathan/resume-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestIntegration_ChatStore(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	store := NewChatStore(db)
	sessionID := uuid.New().String()
	defer func() { _ = store.Delete(ctx, sessionID) }()

	_, err := store.Load(ctx, sessionID)
	require.ErrorIs(t, err, chat.ErrNotFound)

	first := []types.Message{{Role: types.RoleSystem, Content: "You are a helpful, polite assistant."}}
	require.NoError(t, store.Save(ctx, sessionID, first))

	second := append(first, types.Message{Role: types.RoleUser, Content: "hi"})
	require.NoError(t, store.Save(ctx, sessionID, second))

	loaded, err := store.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, second, loaded)

	require.NoError(t, store.Delete(ctx, sessionID))
	_, err = store.Load(ctx, sessionID)
	require.ErrorIs(t, err, chat.ErrNotFound)
}

func TestIntegration_ChatStoreWithManager(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	store := NewChatStore(db)
	sessionID := uuid.New().String()
	defer func() { _ = store.Delete(ctx, sessionID) }()

	m, err := chat.NewManager(ctx, sessionID, stubCompleter{}, chat.EstimateCounter{}, store, chat.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, m.SetPersona(ctx, chat.PersonaTeacher))

	restored, err := chat.NewManager(ctx, sessionID, stubCompleter{}, chat.EstimateCounter{}, store, chat.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, chat.PersonaTeacher, restored.Persona())
}
