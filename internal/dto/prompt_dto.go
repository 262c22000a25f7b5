package dto

import "time"

// PromptDTO Prompt data transfer object
// PromptDTO 提示词数据传输对象
type PromptDTO struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Content          string    `json:"content"`
	Category         string    `json:"category"`
	Version          int       `json:"version"`
	CreatedAt        time.Time `json:"createdAt"`
	CreatedBy        string    `json:"createdBy"`
	OriginalPromptID *int64    `json:"originalPromptId"`
	IsCurrentVersion bool      `json:"isCurrentVersion"`
	RowVersion       int64     `json:"rowVersion"` // Optimistic concurrency token // 乐观锁版本号
}

// PromptCreateRequest Request parameters for creating a prompt
// 创建提示词请求参数
type PromptCreateRequest struct {
	Name        string `json:"name" form:"name" binding:"required,runemax=100"`
	Description string `json:"description" form:"description" binding:"required,runemax=200"`
	Content     string `json:"content" form:"content" binding:"required"`
	Category    string `json:"category" form:"category" binding:"omitempty,runemax=50"`
}

// PromptEditRequest Request parameters for creating a new version
// 新建版本请求参数
type PromptEditRequest struct {
	ID          int64  `json:"id" form:"id" binding:"required,gt=0"`
	Name        string `json:"name" form:"name" binding:"required,runemax=100"`
	Description string `json:"description" form:"description" binding:"required,runemax=200"`
	Content     string `json:"content" form:"content" binding:"required"`
	Category    string `json:"category" form:"category" binding:"omitempty,runemax=50"`
	RowVersion  *int64 `json:"rowVersion" form:"rowVersion"` // Optional expected row version // 可选，期望的乐观锁版本号
}

// PromptDeleteRequest Request parameters for deleting a prompt record
// 删除提示词记录请求参数
type PromptDeleteRequest struct {
	ID         int64  `json:"id" form:"id" binding:"required,gt=0"`
	RowVersion *int64 `json:"rowVersion" form:"rowVersion"`
}

// PromptDiffRequest Request parameters for diffing two versions
// 版本对比请求参数
type PromptDiffRequest struct {
	From int64 `json:"from" form:"from" binding:"required,gt=0"`
	To   int64 `json:"to" form:"to" binding:"required,gt=0"`
}

// PromptExportRequest Request parameters for exporting a prompt to a document
// 导出提示词到文档请求参数
type PromptExportRequest struct {
	ID        int64  `json:"id" form:"id" binding:"required,gt=0"`
	ShareWith string `json:"shareWith" form:"shareWith" binding:"omitempty,email"`
}

// PromptDeleteDTO Delete result
// 删除结果
type PromptDeleteDTO struct {
	DeletedID int64      `json:"deletedId"`
	Promoted  *PromptDTO `json:"promoted"` // Record promoted to current, if any // 被提升为当前版本的记录
}

// DiffSegmentDTO One diff segment
// 差异片段
type DiffSegmentDTO struct {
	Op   string `json:"op"`
	Text string `json:"text"`
}

// PromptDiffDTO Diff between two versions of one lineage
// 同一版本链两个版本的差异
type PromptDiffDTO struct {
	From       *PromptDTO       `json:"from"`
	To         *PromptDTO       `json:"to"`
	Segments   []DiffSegmentDTO `json:"segments"`
	Patch      string           `json:"patch"`
	Insertions int              `json:"insertions"`
	Deletions  int              `json:"deletions"`
	Distance   int              `json:"distance"`
}

// PromptDetailDTO A prompt record with its lineage
// 提示词记录及其版本链
type PromptDetailDTO struct {
	Prompt   *PromptDTO   `json:"prompt"`
	Versions []*PromptDTO `json:"versions"` // Newest version first // 按版本号倒序
}
