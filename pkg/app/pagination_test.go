package app

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func pagerFor(target string) Pager {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return NewPager(c, PaginationConfig{DefaultPageSize: 10, MaxPageSize: 50})
}

func TestNewPager(t *testing.T) {
	assert.Equal(t, Pager{Page: 1, PageSize: 10}, pagerFor("/users"))
	assert.Equal(t, Pager{Page: 3, PageSize: 20}, pagerFor("/users?page=3&pageSize=20"))
	assert.Equal(t, Pager{Page: 1, PageSize: 50}, pagerFor("/users?page=-2&pageSize=500"))
	assert.Equal(t, Pager{Page: 1, PageSize: 10}, pagerFor("/users?page=x&pageSize=y"))
}

func TestGetPageOffset(t *testing.T) {
	assert.Equal(t, 0, GetPageOffset(0, 20))
	assert.Equal(t, 0, GetPageOffset(1, 20))
	assert.Equal(t, 40, GetPageOffset(3, 20))
}
