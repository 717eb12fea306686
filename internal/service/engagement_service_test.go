package service

import (
	"campus_connect_backend/internal/model"
	"campus_connect_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestToggleLikeAddAndRemove(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	viewer := env.createUser(t, "bob")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	state, err := env.engagement.ToggleLike(viewer.ID, resource.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleAdded, state)
	assert.Equal(t, 1, env.reloadResource(t, resource.ID).LikeCount)

	state, err = env.engagement.ToggleLike(viewer.ID, resource.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleRemoved, state)
	assert.Equal(t, 0, env.reloadResource(t, resource.ID).LikeCount)
}

func TestToggleLikeNotifiesUploader(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	viewer := env.createUser(t, "bob")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	_, err := env.engagement.ToggleLike(viewer.ID, resource.ID)
	require.NoError(t, err)

	notifications := env.notificationsFor(t, uploader.ID)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotifyLike, notifications[0].Type)
	assert.Equal(t, viewer.ID, notifications[0].FromID)
	assert.Contains(t, notifications[0].Message, "bob")

	// 取消点赞不产生通知
	_, err = env.engagement.ToggleLike(viewer.ID, resource.ID)
	require.NoError(t, err)
	assert.Len(t, env.notificationsFor(t, uploader.ID), 1)
}

func TestToggleLikeSelfDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	state, err := env.engagement.ToggleLike(uploader.ID, resource.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleAdded, state)
	assert.Equal(t, 1, env.reloadResource(t, resource.ID).LikeCount)
	assert.Empty(t, env.notificationsFor(t, uploader.ID))
}

func TestToggleLikeMissingResource(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.createUser(t, "bob")

	_, err := env.engagement.ToggleLike(viewer.ID, 9999)
	assert.ErrorIs(t, err, util.ErrResourceNotFound)
}

// 两个请求同时首次点赞：双方都通过存在性检查，唯一索引只放行一个，
// 失败方视为已点赞且不再递增计数
func TestToggleLikeConcurrentFirstLike(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	viewer := env.createUser(t, "bob")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	// 在存在性检查之后、插入之前让竞争请求抢先写入并递增
	raced := false
	err := env.db.Callback().Create().Before("gorm:create").Register("competing_like", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*model.ResourceLike); !ok || raced {
			return
		}
		raced = true
		require.NoError(t, env.db.Exec(
			"INSERT INTO resource_likes (user_id, resource_id, created_at) VALUES (?, ?, ?)",
			viewer.ID, resource.ID, time.Now()).Error)
		require.NoError(t, env.resources.IncrementLikeCount(resource.ID, 1))
	})
	require.NoError(t, err)

	state, err := env.engagement.ToggleLike(viewer.ID, resource.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleAdded, state)
	require.True(t, raced)

	var likes int64
	env.db.Model(&model.ResourceLike{}).Where("resource_id = ?", resource.ID).Count(&likes)
	assert.EqualValues(t, 1, likes)
	assert.Equal(t, 1, env.reloadResource(t, resource.ID).LikeCount)
}

// 两个请求同时取消点赞：后到的删除影响0行，不得重复递减
func TestToggleLikeConcurrentUnlike(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	viewer := env.createUser(t, "bob")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	_, err := env.engagement.ToggleLike(viewer.ID, resource.ID)
	require.NoError(t, err)
	require.Equal(t, 1, env.reloadResource(t, resource.ID).LikeCount)

	raced := false
	err = env.db.Callback().Delete().Before("gorm:delete").Register("competing_unlike", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*model.ResourceLike); !ok || raced {
			return
		}
		raced = true
		require.NoError(t, env.db.Exec(
			"DELETE FROM resource_likes WHERE user_id = ? AND resource_id = ?",
			viewer.ID, resource.ID).Error)
		require.NoError(t, env.resources.IncrementLikeCount(resource.ID, -1))
	})
	require.NoError(t, err)

	state, err := env.engagement.ToggleLike(viewer.ID, resource.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleRemoved, state)
	require.True(t, raced)

	// 计数不得跌破点赞行数
	assert.Equal(t, 0, env.reloadResource(t, resource.ID).LikeCount)
}

func TestToggleSaveConcurrentFirstSave(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	viewer := env.createUser(t, "bob")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	raced := false
	err := env.db.Callback().Create().Before("gorm:create").Register("competing_save", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*model.ResourceSave); !ok || raced {
			return
		}
		raced = true
		require.NoError(t, env.db.Exec(
			"INSERT INTO resource_saves (user_id, resource_id, created_at) VALUES (?, ?, ?)",
			viewer.ID, resource.ID, time.Now()).Error)
	})
	require.NoError(t, err)

	state, err := env.engagement.ToggleSave(viewer.ID, resource.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleAdded, state)
	require.True(t, raced)

	var saves int64
	env.db.Model(&model.ResourceSave{}).Where("resource_id = ?", resource.ID).Count(&saves)
	assert.EqualValues(t, 1, saves)
}

// 两个请求同时首次浏览：失败方降级为刷新时间戳，计数和通知都只算一次
func TestRecordViewConcurrentFirstView(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	viewer := env.createUser(t, "bob")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	raced := false
	err := env.db.Callback().Create().Before("gorm:create").Register("competing_view", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*model.ResourceView); !ok || raced {
			return
		}
		raced = true
		require.NoError(t, env.db.Exec(
			"INSERT INTO resource_views (user_id, resource_id, created_at, last_viewed_at) VALUES (?, ?, ?, ?)",
			viewer.ID, resource.ID, time.Now(), time.Now()).Error)
		require.NoError(t, env.resources.IncrementViewCount(resource.ID))
	})
	require.NoError(t, err)

	require.NoError(t, env.engagement.RecordView(viewer.ID, resource.ID))
	require.True(t, raced)

	var views int64
	env.db.Model(&model.ResourceView{}).Where("resource_id = ?", resource.ID).Count(&views)
	assert.EqualValues(t, 1, views)
	assert.Equal(t, 1, env.reloadResource(t, resource.ID).ViewCount)
	// 落败的请求不再通知
	assert.Empty(t, env.notificationsFor(t, uploader.ID))
}

func TestToggleSaveDoesNotTouchCountersOrNotify(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	viewer := env.createUser(t, "bob")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	state, err := env.engagement.ToggleSave(viewer.ID, resource.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleAdded, state)

	reloaded := env.reloadResource(t, resource.ID)
	assert.Equal(t, 0, reloaded.LikeCount)
	assert.Equal(t, 0, reloaded.ViewCount)
	assert.Empty(t, env.notificationsFor(t, uploader.ID))

	state, err = env.engagement.ToggleSave(viewer.ID, resource.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleRemoved, state)

	saved, total, err := env.engagement.ListSaved(viewer.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, saved)
	assert.Zero(t, total)
}

func TestRecordViewCountsDistinctViewers(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	viewer := env.createUser(t, "bob")
	other := env.createUser(t, "carol")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	require.NoError(t, env.engagement.RecordView(viewer.ID, resource.ID))
	require.NoError(t, env.engagement.RecordView(viewer.ID, resource.ID))
	require.NoError(t, env.engagement.RecordView(other.ID, resource.ID))

	assert.Equal(t, 2, env.reloadResource(t, resource.ID).ViewCount)

	// 首次浏览各发一条通知，重复浏览不再通知
	notifications := env.notificationsFor(t, uploader.ID)
	assert.Len(t, notifications, 2)
}

func TestRecordViewByUploaderIsNoop(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	require.NoError(t, env.engagement.RecordView(uploader.ID, resource.ID))

	assert.Equal(t, 0, env.reloadResource(t, resource.ID).ViewCount)
	views, err := env.engagement.ListViews(resource.ID, uploader.ID, model.Student)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestListViewsPermission(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	viewer := env.createUser(t, "bob")
	admin := env.createUser(t, "root")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	require.NoError(t, env.engagement.RecordView(viewer.ID, resource.ID))

	views, err := env.engagement.ListViews(resource.ID, uploader.ID, model.Student)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, viewer.ID, views[0].UserID)

	_, err = env.engagement.ListViews(resource.ID, viewer.ID, model.Student)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = env.engagement.ListViews(resource.ID, admin.ID, model.Admin)
	assert.NoError(t, err)
}

func TestListLikedOrderedByLikeTime(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	viewer := env.createUser(t, "bob")
	first := env.createResource(t, uploader.ID, "first", "Math", "Grade 10")
	second := env.createResource(t, uploader.ID, "second", "Physics", "Grade 11")

	_, err := env.engagement.ToggleLike(viewer.ID, first.ID)
	require.NoError(t, err)
	_, err = env.engagement.ToggleLike(viewer.ID, second.ID)
	require.NoError(t, err)

	liked, total, err := env.engagement.ListLiked(viewer.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, liked, 2)
}

func TestReconcileRebuildsCounters(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.createUser(t, "alice")
	viewer := env.createUser(t, "bob")
	resource := env.createResource(t, uploader.ID, "algebra-notes", "Math", "Grade 10")

	_, err := env.engagement.ToggleLike(viewer.ID, resource.ID)
	require.NoError(t, err)
	require.NoError(t, env.engagement.RecordView(viewer.ID, resource.ID))
	_, err = env.rating.Rate(resource.ID, viewer.ID, 4, "solid notes")
	require.NoError(t, err)

	// 人为破坏冗余计数
	require.NoError(t, env.resources.UpdateFields(resource.ID, map[string]interface{}{
		"like_count":     42,
		"view_count":     42,
		"average_rating": 1.0,
		"ratings_count":  42,
	}))

	require.NoError(t, env.engagement.Reconcile(resource.ID))

	reloaded := env.reloadResource(t, resource.ID)
	assert.Equal(t, 1, reloaded.LikeCount)
	assert.Equal(t, 1, reloaded.ViewCount)
	assert.Equal(t, 1, reloaded.RatingsCount)
	assert.InDelta(t, 4.0, reloaded.AverageRating, 0.001)
}
