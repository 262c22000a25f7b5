package dao

import (
	"context"
	"strconv"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/internal/model"

	"gorm.io/gorm"
)

// chatHistoryRepository 数据库实现，超出上限的旧消息在追加时删除，过期消息由定时任务清理
type chatHistoryRepository struct {
	dao         *Dao
	maxMessages int
}

// NewChatHistoryRepository 创建数据库对话历史仓储
func NewChatHistoryRepository(dao *Dao, maxMessages int) domain.ChatHistoryRepository {
	return &chatHistoryRepository{dao: dao, maxMessages: maxMessages}
}

func chatKey(uid int64) string {
	return "chat:" + strconv.FormatInt(uid, 10)
}

// List 获取对话历史，按时间正序
func (r *chatHistoryRepository) List(ctx context.Context, uid int64) ([]domain.ChatMessage, error) {
	var ms []model.ChatMessage
	if err := r.dao.DB(ctx).Where("uid = ?", uid).Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ChatMessage, 0, len(ms))
	for _, m := range ms {
		out = append(out, domain.ChatMessage{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	return out, nil
}

// Append 追加消息
func (r *chatHistoryRepository) Append(ctx context.Context, uid int64, messages ...domain.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	rows := make([]model.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		rows = append(rows, model.ChatMessage{UID: uid, Role: msg.Role, Content: msg.Content, CreatedAt: msg.CreatedAt})
	}

	return r.dao.ExecuteWrite(ctx, chatKey(uid), func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
			if r.maxMessages <= 0 {
				return nil
			}
			// 保留最新的 maxMessages 条
			var cutoff []int64
			if err := tx.Model(&model.ChatMessage{}).
				Where("uid = ?", uid).
				Order("id DESC").
				Offset(r.maxMessages).Limit(1).
				Pluck("id", &cutoff).Error; err != nil {
				return err
			}
			if len(cutoff) == 0 {
				return nil
			}
			return tx.Where("uid = ? AND id <= ?", uid, cutoff[0]).Delete(&model.ChatMessage{}).Error
		})
	})
}

// Clear 清空对话历史
func (r *chatHistoryRepository) Clear(ctx context.Context, uid int64) error {
	return r.dao.ExecuteWrite(ctx, chatKey(uid), func(db *gorm.DB) error {
		return db.Where("uid = ?", uid).Delete(&model.ChatMessage{}).Error
	})
}

// PurgeBefore 删除早于 before 的消息
func (r *chatHistoryRepository) PurgeBefore(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	err := r.dao.ExecuteWrite(ctx, "chat:purge", func(db *gorm.DB) error {
		res := db.Where("created_at < ?", before).Delete(&model.ChatMessage{})
		n = res.RowsAffected
		return res.Error
	})
	return n, err
}
