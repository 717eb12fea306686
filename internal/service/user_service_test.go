package service

import (
	"campus_connect_backend/internal/repository"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfileWhitelist(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	users := NewUserService(repository.NewUserRepository(env.db))

	updated, err := users.UpdateProfile(alice.ID, map[string]interface{}{
		"bio":      "hi there",
		"school":   "Roosevelt High",
		"role":     "admin",
		"username": "stolen",
	})
	require.NoError(t, err)

	assert.Equal(t, "hi there", updated.Bio)
	assert.Equal(t, "Roosevelt High", updated.School)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, alice.Role, updated.Role)
}

// 活跃时间由应用层写入，不依赖数据库方言的默认值
func TestUpdateLastSeenTracksActivity(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	require.NoError(t, env.users.UpdateLastSeen(alice.ID))

	reloaded, err := env.users.FindByID(alice.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.LastSeen.IsZero())
}
