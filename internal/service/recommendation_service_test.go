package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendFallsBackToPopular(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	popular := env.createResource(t, alice.ID, "popular", "Math", "Grade 10")
	quiet := env.createResource(t, alice.ID, "quiet", "Math", "Grade 10")
	own := env.createResource(t, bob.ID, "bobs-own", "Math", "Grade 10")

	_, err := env.engagement.ToggleLike(carol.ID, popular.ID)
	require.NoError(t, err)

	// bob 没有点赞历史，走人气榜，且不包含他自己上传的资源
	recommended, total, err := env.recommend.Recommend(bob.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, recommended, 2)
	assert.Equal(t, popular.ID, recommended[0].ID)
	assert.Equal(t, quiet.ID, recommended[1].ID)
	for _, r := range recommended {
		assert.NotEqual(t, own.ID, r.ID)
	}
}

func TestRecommendFiltersByLikedSubjectsAndGrades(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	mathLiked := env.createResource(t, alice.ID, "math-liked", "Math", "Grade 10")
	mathOther := env.createResource(t, alice.ID, "math-other", "Math", "Grade 12")
	sameGrade := env.createResource(t, alice.ID, "history-g10", "History", "Grade 10")
	unrelated := env.createResource(t, alice.ID, "chem-g12", "Chemistry", "Grade 12")

	_, err := env.engagement.ToggleLike(bob.ID, mathLiked.ID)
	require.NoError(t, err)

	recommended, total, err := env.recommend.Recommend(bob.ID, 1, 10)
	require.NoError(t, err)

	// 学科或年级命中即为候选；已点赞的 math-liked 本身被排除
	ids := make(map[uint]bool, len(recommended))
	for _, r := range recommended {
		ids[r.ID] = true
	}
	assert.EqualValues(t, 2, total)
	assert.True(t, ids[mathOther.ID])
	assert.True(t, ids[sameGrade.ID])
	assert.False(t, ids[mathLiked.ID])
	assert.False(t, ids[unrelated.ID])
}

func TestRecommendExcludesOwnUploads(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	theirs := env.createResource(t, alice.ID, "theirs", "Math", "Grade 10")
	mine := env.createResource(t, bob.ID, "mine", "Math", "Grade 10")

	_, err := env.engagement.ToggleLike(bob.ID, theirs.ID)
	require.NoError(t, err)

	recommended, _, err := env.recommend.Recommend(bob.ID, 1, 10)
	require.NoError(t, err)
	for _, r := range recommended {
		assert.NotEqual(t, mine.ID, r.ID)
	}
}

func TestRecommendAfterUnlikeFallsBack(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	resource := env.createResource(t, alice.ID, "math-notes", "Math", "Grade 10")

	_, err := env.engagement.ToggleLike(bob.ID, resource.ID)
	require.NoError(t, err)
	_, err = env.engagement.ToggleLike(bob.ID, resource.ID)
	require.NoError(t, err)

	recommended, total, err := env.recommend.Recommend(bob.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, recommended, 1)
	assert.Equal(t, resource.ID, recommended[0].ID)
}
