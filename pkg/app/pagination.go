package app

import (
	"github.com/haierkeys/agent-scrum-service/pkg/convert"

	"github.com/gin-gonic/gin"
)

// PaginationConfig 分页配置
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// queryInt 依次读取 query 与 form 中的整数参数，缺失或非法时为 0
func queryInt(c *gin.Context, key string) int {
	if s, ok := c.GetQuery(key); ok {
		return convert.StrTo(s).MustInt()
	}
	return convert.StrTo(c.PostForm(key)).MustInt()
}

// NewPager 解析请求中的 page/pageSize，pageSize 按 cfg 取默认值并封顶
func NewPager(c *gin.Context, cfg PaginationConfig) Pager {
	return Pager{
		Page:     GetPage(c),
		PageSize: GetPageSizeWithConfig(c, cfg),
	}
}

func GetPage(c *gin.Context) int {
	if page := queryInt(c, "page"); page > 0 {
		return page
	}
	return 1
}

// GetPageSizeWithConfig 获取分页大小
func GetPageSizeWithConfig(c *gin.Context, cfg PaginationConfig) int {
	pageSize := queryInt(c, "pageSize")
	switch {
	case pageSize <= 0:
		return cfg.DefaultPageSize
	case pageSize > cfg.MaxPageSize:
		return cfg.MaxPageSize
	}
	return pageSize
}

// GetPageOffset 第 page 页的起始偏移，page 小于 1 视为第一页
func GetPageOffset(page, pageSize int) int {
	if page <= 1 {
		return 0
	}
	return (page - 1) * pageSize
}
