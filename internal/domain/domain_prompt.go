package domain

import "time"

// Prompt 提示词领域模型
// 同一版本链（lineage）由根记录及所有 OriginalPromptID 指向根的记录组成，链内恰有一条 IsCurrentVersion=true
type Prompt struct {
	ID               int64
	Name             string
	Description      string
	Content          string
	Category         string
	Version          int
	CreatedAt        time.Time
	CreatedBy        string
	OriginalPromptID *int64
	IsCurrentVersion bool
	// RowVersion 乐观锁版本号，每次修改该行时递增
	RowVersion int64
}

// LineageID 版本链根 ID，根记录返回自身 ID
func (p *Prompt) LineageID() int64 {
	if p.OriginalPromptID != nil {
		return *p.OriginalPromptID
	}
	return p.ID
}

// IsRoot 是否为版本链根记录
func (p *Prompt) IsRoot() bool {
	return p.OriginalPromptID == nil
}

// PromptDraft 创建或新建版本时提交的内容字段
type PromptDraft struct {
	Name        string
	Description string
	Content     string
	Category    string
	CreatedBy   string
}

// 字段长度上限（按字符计）
const (
	PromptNameMaxLen        = 100
	PromptDescriptionMaxLen = 200
	PromptCategoryMaxLen    = 50
)

// PromptStats 报表统计
type PromptStats struct {
	Lineages      int64
	Versions      int64
	MaxVersion    int
	Categories    []CategoryCount
	LatestCreated *time.Time
}

// CategoryCount 分类下的当前版本数量
type CategoryCount struct {
	Category string
	Count    int64
}
