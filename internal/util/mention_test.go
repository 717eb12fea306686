package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMentions(t *testing.T) {
	assert.Nil(t, ParseMentions(""))
	assert.Nil(t, ParseMentions("no mentions here"))

	assert.Equal(t, []string{"bob"}, ParseMentions("thanks @bob!"))
	assert.Equal(t, []string{"bob", "carol"}, ParseMentions("@bob see @carol's notes"))

	// 去重并保持出现顺序
	assert.Equal(t, []string{"bob", "carol"}, ParseMentions("@bob @carol @bob"))

	// 标点截断用户名
	assert.Equal(t, []string{"bob_2"}, ParseMentions("ping @bob_2, please"))

	// 邮箱里的 @ 也会被提取，由解析方用户名匹配兜底
	assert.Equal(t, []string{"example"}, ParseMentions("mail me at alice@example.com"))
}
