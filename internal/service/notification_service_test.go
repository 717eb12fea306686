package service

import (
	"campus_connect_backend/internal/model"
	"campus_connect_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitSuppressesSelfNotification(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	env.notification.Emit(model.NotifyLike, alice.ID, alice.ID, 1, "self like")

	assert.Empty(t, env.notificationsFor(t, alice.ID))
}

func TestMarkReadOnlyOwnNotifications(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	env.notification.Emit(model.NotifyLike, alice.ID, bob.ID, 1, "bob liked your resource")

	notifications := env.notificationsFor(t, alice.ID)
	require.Len(t, notifications, 1)
	require.False(t, notifications[0].Read)

	// 别人的通知标记不到
	err := env.notification.MarkRead(notifications[0].ID, bob.ID)
	assert.ErrorIs(t, err, util.ErrNotificationNotFound)

	require.NoError(t, env.notification.MarkRead(notifications[0].ID, alice.ID))
	assert.True(t, env.notificationsFor(t, alice.ID)[0].Read)
}

func TestMarkAllReadAndUnreadCount(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	env.notification.Emit(model.NotifyLike, alice.ID, bob.ID, 1, "like")
	env.notification.Emit(model.NotifyView, alice.ID, bob.ID, 2, "view")

	count, err := env.notification.UnreadCount(alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, env.notification.MarkAllRead(alice.ID))

	count, err = env.notification.UnreadCount(alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListNotificationsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	env.notification.Emit(model.NotifyLike, alice.ID, bob.ID, 1, "first")
	env.notification.Emit(model.NotifyRating, alice.ID, bob.ID, 2, "second")

	notifications, total, err := env.notification.List(alice.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, notifications, 2)
	assert.Equal(t, "bob", notifications[0].From.Username)
}
