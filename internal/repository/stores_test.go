package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/unihelp-api/internal/models"
	"github.com/noah-isme/unihelp-api/pkg/config"
)

var (
	_ UserStore         = (*UserFileRepository)(nil)
	_ UserStore         = (*UserPostgresRepository)(nil)
	_ StudentStore      = (*StudentFileRepository)(nil)
	_ StudentStore      = (*StudentPostgresRepository)(nil)
	_ ConversationStore = (*ConversationFileRepository)(nil)
	_ ConversationStore = (*ConversationPostgresRepository)(nil)
	_ SessionStore      = (*RedisSessionRepository)(nil)
	_ SessionStore      = (*MemorySessionRepository)(nil)
)

func TestNewFileStoresUsesConfiguredFiles(t *testing.T) {
	store := newFlatStore(t)
	stores := NewFileStores(store, config.StorageConfig{
		UsersFile:         "u.txt",
		StudentsFile:      "s.txt",
		ConversationsFile: "c.txt",
	}, zap.NewNop())
	ctx := context.Background()

	require.True(t, stores.Users.Create(ctx, &models.UserRecord{RegistrationID: "7", FullName: "Caio", PasswordHash: "h"}))
	require.True(t, stores.Students.Seed(ctx, "7", "Caio", "ADS"))
	require.True(t, stores.Conversations.Append(ctx, models.ConversationTurn{RegistrationID: "7", Timestamp: "2024-01-01 10:00:00", Question: "q", Answer: "a"}))

	assert.True(t, store.Exists("u.txt"))
	assert.True(t, store.Exists("s.txt"))
	assert.True(t, store.Exists("c.txt"))
	assert.Equal(t, []string{"7"}, stores.Students.IDs(ctx))
	assert.Equal(t, 1, stores.Conversations.Count(ctx))
}
