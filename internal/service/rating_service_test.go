package service

import (
	"campus_connect_backend/internal/model"
	"campus_connect_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateUpdatesAggregates(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	_, err := env.rating.Rate(resource.ID, bob.ID, 5, "great")
	require.NoError(t, err)
	_, err = env.rating.Rate(resource.ID, carol.ID, 2, "")
	require.NoError(t, err)

	reloaded := env.reloadResource(t, resource.ID)
	assert.Equal(t, 2, reloaded.RatingsCount)
	assert.InDelta(t, 3.5, reloaded.AverageRating, 0.001)
}

func TestRateRejectsOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	_, err := env.rating.Rate(resource.ID, bob.ID, 0, "")
	assert.ErrorIs(t, err, util.ErrInvalidRating)
	_, err = env.rating.Rate(resource.ID, bob.ID, 6, "")
	assert.ErrorIs(t, err, util.ErrInvalidRating)
}

func TestRateTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	_, err := env.rating.Rate(resource.ID, bob.ID, 4, "")
	require.NoError(t, err)

	_, err = env.rating.Rate(resource.ID, bob.ID, 5, "changed my mind")
	assert.ErrorIs(t, err, util.ErrAlreadyRated)

	reloaded := env.reloadResource(t, resource.ID)
	assert.Equal(t, 1, reloaded.RatingsCount)
	assert.InDelta(t, 4.0, reloaded.AverageRating, 0.001)
}

func TestRateMissingResource(t *testing.T) {
	env := newTestEnv(t)
	bob := env.createUser(t, "bob")

	_, err := env.rating.Rate(9999, bob.ID, 4, "")
	assert.ErrorIs(t, err, util.ErrResourceNotFound)
}

func TestRateResolvesMentions(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	rating, err := env.rating.Rate(resource.ID, bob.ID, 5, "check this out @Carol and @ghost")
	require.NoError(t, err)

	// 大小写不敏感解析，未注册的 @ghost 静默丢弃
	require.Len(t, rating.TaggedUsers, 1)
	assert.Equal(t, carol.ID, rating.TaggedUsers[0].ID)

	carolNotifications := env.notificationsFor(t, carol.ID)
	require.Len(t, carolNotifications, 1)
	assert.Equal(t, model.NotifyTagComment, carolNotifications[0].Type)

	uploaderNotifications := env.notificationsFor(t, uploader.ID)
	require.Len(t, uploaderNotifications, 1)
	assert.Equal(t, model.NotifyRating, uploaderNotifications[0].Type)
}

func TestRateOwnResourceSkipsUploaderNotification(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	_, err := env.rating.Rate(resource.ID, uploader.ID, 5, "my own notes are great")
	require.NoError(t, err)

	assert.Empty(t, env.notificationsFor(t, uploader.ID))
}

func TestListRatingsPreloadsUsers(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	_, err := env.rating.Rate(resource.ID, bob.ID, 4, "nice @alice")
	require.NoError(t, err)

	ratings, err := env.rating.ListRatings(resource.ID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, "bob", ratings[0].User.Username)
	require.Len(t, ratings[0].TaggedUsers, 1)
	assert.Equal(t, "alice", ratings[0].TaggedUsers[0].Username)
}
