package model

import "time"

const TableNamePrompt = "prompt"

// Prompt mapped from table <prompt>
type Prompt struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name             string    `gorm:"column:name;size:100;not null" json:"name"`
	Description      string    `gorm:"column:description;size:200;not null" json:"description"`
	Content          string    `gorm:"column:content;type:text;not null" json:"content"`
	Category         string    `gorm:"column:category;size:50;not null;default:''" json:"category"`
	Version          int       `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt        time.Time `gorm:"column:created_at;not null;index:idx_prompt_current_created,priority:2;autoCreateTime:false" json:"createdAt"`
	CreatedBy        string    `gorm:"column:created_by;size:255;not null;default:''" json:"createdBy"`
	OriginalPromptID *int64    `gorm:"column:original_prompt_id;index:idx_prompt_lineage" json:"originalPromptId"`
	IsCurrentVersion bool      `gorm:"column:is_current_version;not null;default:false;index:idx_prompt_current_created,priority:1" json:"isCurrentVersion"`
	RowVersion       int64     `gorm:"column:row_version;not null;default:1" json:"rowVersion"`
}

// TableName Prompt's table name
func (*Prompt) TableName() string {
	return TableNamePrompt
}

const TableNamePromptLineage = "prompt_lineage"

// PromptLineage 版本链已分配的最高版本号，删除版本时不回退
type PromptLineage struct {
	RootID        int64 `gorm:"column:root_id;primaryKey;autoIncrement:false" json:"rootId"`
	LatestVersion int   `gorm:"column:latest_version;not null;default:0" json:"latestVersion"`
}

// TableName PromptLineage's table name
func (*PromptLineage) TableName() string {
	return TableNamePromptLineage
}
