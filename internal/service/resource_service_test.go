package service

import (
	"campus_connect_backend/internal/model"
	"campus_connect_backend/internal/repository"
	"campus_connect_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateResourceValidatesFields(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	err := env.resource.Create(&model.Resource{
		Title:      "missing-file",
		Subject:    "Math",
		GradeLevel: "Grade 10",
		UploaderID: alice.ID,
	})
	assert.ErrorIs(t, err, util.ErrMissingResourceFields)

	err = env.resource.Create(&model.Resource{
		Title:        "bad-type",
		FileURL:      "/uploads/x.pdf",
		Subject:      "Math",
		GradeLevel:   "Grade 10",
		ResourceType: "mixtape",
		UploaderID:   alice.ID,
	})
	assert.ErrorIs(t, err, util.ErrInvalidResourceType)
}

func TestCreateResourceTagsMentionedUsers(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	resource := &model.Resource{
		Title:        "group-project",
		Description:  "made together with @bob and @ghost",
		FileURL:      "/uploads/resources/group-project.pdf",
		Subject:      "Math",
		GradeLevel:   "Grade 10",
		ResourceType: model.Notes,
		UploaderID:   alice.ID,
	}
	require.NoError(t, env.resource.Create(resource))

	// 解析不到的用户名直接丢弃
	reloaded := env.reloadResource(t, resource.ID)
	require.Len(t, reloaded.TaggedUsers, 1)
	assert.Equal(t, bob.ID, reloaded.TaggedUsers[0].ID)

	notifications := env.notificationsFor(t, bob.ID)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotifyTag, notifications[0].Type)
	assert.Equal(t, alice.ID, notifications[0].FromID)
	assert.Equal(t, resource.ID, notifications[0].ResourceID)
}

func TestCreateResourceSelfMentionDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	resource := &model.Resource{
		Title:        "solo-notes",
		Description:  "compiled by @alice",
		FileURL:      "/uploads/resources/solo-notes.pdf",
		Subject:      "Math",
		GradeLevel:   "Grade 10",
		ResourceType: model.Notes,
		UploaderID:   alice.ID,
	}
	require.NoError(t, env.resource.Create(resource))

	reloaded := env.reloadResource(t, resource.ID)
	require.Len(t, reloaded.TaggedUsers, 1)
	assert.Empty(t, env.notificationsFor(t, alice.ID))
}

func TestDeleteResourceClearsTaggedUsers(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")

	resource := &model.Resource{
		Title:        "shared-notes",
		Description:  "thanks @bob",
		FileURL:      "/uploads/resources/shared-notes.pdf",
		Subject:      "Math",
		GradeLevel:   "Grade 10",
		ResourceType: model.Notes,
		UploaderID:   alice.ID,
	}
	require.NoError(t, env.resource.Create(resource))
	require.NoError(t, env.resource.Delete(resource.ID, alice.ID, model.Student))

	var tagged int64
	env.db.Table("resource_tagged_users").Where("resource_id = ?", resource.ID).Count(&tagged)
	assert.Zero(t, tagged)
}

func TestListFiltersBySubjectAndSearch(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createResource(t, alice.ID, "algebra basics", "Math", "Grade 10")
	env.createResource(t, alice.ID, "world war notes", "History", "Grade 10")

	results, total, err := env.resource.List(repository.ResourceFilter{Subject: "Math"}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, "algebra basics", results[0].Title)

	results, total, err = env.resource.List(repository.ResourceFilter{Search: "war"}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, "world war notes", results[0].Title)
}

func TestUpdateResourcePermissionsAndWhitelist(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	resource := env.createResource(t, alice.ID, "algebra-notes", "Math", "Grade 10")

	_, err := env.resource.Update(resource.ID, map[string]interface{}{"title": "new"}, bob.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	updated, err := env.resource.Update(resource.ID, map[string]interface{}{
		"title":      "renamed",
		"like_count": 999,
		"file_url":   "/tmp/hacked",
	}, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, 0, updated.LikeCount)
	assert.Equal(t, resource.FileURL, updated.FileURL)
}

func TestDeleteResourceCascades(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	resource := env.createResource(t, alice.ID, "algebra-notes", "Math", "Grade 10")

	_, err := env.engagement.ToggleLike(bob.ID, resource.ID)
	require.NoError(t, err)
	_, err = env.engagement.ToggleSave(bob.ID, resource.ID)
	require.NoError(t, err)
	require.NoError(t, env.engagement.RecordView(bob.ID, resource.ID))
	_, err = env.rating.Rate(resource.ID, bob.ID, 4, "good @alice")
	require.NoError(t, err)

	require.NoError(t, env.resource.Delete(resource.ID, alice.ID, model.Student))

	_, err = env.resource.Get(resource.ID)
	assert.ErrorIs(t, err, util.ErrResourceNotFound)

	var likes, saves, views, ratings, notifications int64
	env.db.Model(&model.ResourceLike{}).Where("resource_id = ?", resource.ID).Count(&likes)
	env.db.Model(&model.ResourceSave{}).Where("resource_id = ?", resource.ID).Count(&saves)
	env.db.Model(&model.ResourceView{}).Where("resource_id = ?", resource.ID).Count(&views)
	env.db.Model(&model.Rating{}).Where("resource_id = ?", resource.ID).Count(&ratings)
	env.db.Model(&model.Notification{}).Where("resource_id = ?", resource.ID).Count(&notifications)

	assert.Zero(t, likes)
	assert.Zero(t, saves)
	assert.Zero(t, views)
	assert.Zero(t, ratings)
	assert.Zero(t, notifications)
}

func TestDeleteResourcePermissions(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	resource := env.createResource(t, alice.ID, "algebra-notes", "Math", "Grade 10")

	err := env.resource.Delete(resource.ID, bob.ID, model.Student)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	// 管理员可以删除任何资源
	require.NoError(t, env.resource.Delete(resource.ID, bob.ID, model.Admin))
}
