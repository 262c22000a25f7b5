// Package domain 定义领域模型和接口
package domain

import (
	"context"
	"time"
)

// PromptRepository 提示词仓储接口
// 记录不存在时返回 gorm.ErrRecordNotFound
type PromptRepository interface {
	// ListCurrent 所有当前版本，按创建时间倒序
	ListCurrent(ctx context.Context) ([]*Prompt, error)

	// GetByID 根据ID获取提示词
	GetByID(ctx context.Context, id int64) (*Prompt, error)

	// GetLineage 获取 id 所在的版本链（根记录及其全部版本），按版本号倒序
	GetLineage(ctx context.Context, id int64) ([]*Prompt, error)

	// Create 创建版本链根记录（版本 1，当前版本）
	Create(ctx context.Context, draft *PromptDraft, createdAt time.Time) (*Prompt, error)

	// CreateVersion 在 existingID 所在的版本链上新建版本并成为当前版本
	// expectedRowVersion 非空时校验 existingID 记录的乐观锁版本号
	CreateVersion(ctx context.Context, existingID int64, draft *PromptDraft, createdAt time.Time, expectedRowVersion *int64) (*Prompt, error)

	// Delete 删除记录；若删除的是当前版本且链内还有其他版本，返回被提升为当前版本的记录
	Delete(ctx context.Context, id int64, expectedRowVersion *int64) (promoted *Prompt, err error)

	// RepairLineages 修复版本链：无当前版本或多个当前版本时，以最高版本为当前版本
	RepairLineages(ctx context.Context) (repaired int, err error)

	// Stats 报表统计
	Stats(ctx context.Context) (*PromptStats, error)
}

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByID 根据ID获取用户（含角色与声明）
	GetByID(ctx context.Context, uid int64) (*User, error)

	// GetByEmail 根据邮箱获取用户（含角色与声明）
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUsername 根据用户名获取用户
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Create 创建用户，同时写入角色与声明
	Create(ctx context.Context, user *User) (*User, error)

	// GrantRoles 授予角色，已拥有的跳过
	GrantRoles(ctx context.Context, uid int64, roles ...string) error

	// GrantClaims 授予声明，已拥有的跳过
	GrantClaims(ctx context.Context, uid int64, claims ...Claim) error

	// List 分页获取用户列表
	List(ctx context.Context, page, pageSize int) ([]*User, error)

	// Count 用户总数
	Count(ctx context.Context) (int64, error)
}

// CredentialRepository 凭据仓储接口
type CredentialRepository interface {
	// GetByUID 获取用户的凭据
	GetByUID(ctx context.Context, uid int64) (*Credential, error)

	// Upsert 每个用户最多一条凭据，存在则覆盖
	Upsert(ctx context.Context, credential *Credential) (*Credential, error)

	// List 获取全部凭据，供定时校验使用
	List(ctx context.Context) ([]*Credential, error)

	// UpdateValidation 更新校验结果
	UpdateValidation(ctx context.Context, id int64, isValid bool, validatedAt time.Time) error
}

// ChatHistoryRepository 对话历史仓储接口
type ChatHistoryRepository interface {
	// List 获取用户的对话历史，按时间正序
	List(ctx context.Context, uid int64) ([]ChatMessage, error)

	// Append 追加消息，超过上限时丢弃最早的消息
	Append(ctx context.Context, uid int64, messages ...ChatMessage) error

	// Clear 清空用户的对话历史
	Clear(ctx context.Context, uid int64) error

	// PurgeBefore 删除早于指定时间的消息，返回删除条数；自带过期机制的实现返回 0
	PurgeBefore(ctx context.Context, before time.Time) (int64, error)
}
