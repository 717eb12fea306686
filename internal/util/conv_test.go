package util

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationContext(query string) *gin.Context {
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return ctx
}

func TestPagination(t *testing.T) {
	page, limit := Pagination(paginationContext(""), 12)
	assert.Equal(t, 1, page)
	assert.Equal(t, 12, limit)

	page, limit = Pagination(paginationContext("page=3&limit=50"), 12)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, limit)

	// 非法值收敛到默认区间
	page, limit = Pagination(paginationContext("page=-1&limit=9999"), 20)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)

	page, limit = Pagination(paginationContext("page=abc&limit=abc"), 20)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
}

func TestMustParseUint(t *testing.T) {
	assert.EqualValues(t, 42, MustParseUint("42"))
	assert.EqualValues(t, 0, MustParseUint("not-a-number"))
	assert.EqualValues(t, 0, MustParseUint("-1"))
}
