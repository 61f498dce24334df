package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func query(raw string) Query {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/posts?"+raw, nil)
	return FromContext(c)
}

func TestFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	assert.Equal(t, Query{Page: 1, Size: 10}, query(""))
	assert.Equal(t, Query{Page: 3, Size: 5}, query("page=3&limit=5"))
	assert.Equal(t, Query{Page: 1, Size: 10}, query("page=abc&limit=-2"))
	assert.Equal(t, Query{Page: 1, Size: MaxSize}, query("page=0&limit=1000"))
}

func TestMeta(t *testing.T) {
	m := Query{Page: 1, Size: 10}.Meta(11)
	assert.Equal(t, 2, m.TotalPages)
	assert.EqualValues(t, 11, m.TotalItems)
	assert.True(t, m.HasNextPage)
}
