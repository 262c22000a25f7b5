package dao

import (
	"context"
	"strconv"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// redisChatHistoryRepository 每个用户一个 Redis 列表，LTRIM 控制长度，EXPIRE 控制生命周期
type redisChatHistoryRepository struct {
	client      *redis.Client
	prefix      string
	maxMessages int
	ttl         time.Duration
}

// NewRedisChatHistoryRepository 创建 Redis 对话历史仓储
func NewRedisChatHistoryRepository(client *redis.Client, prefix string, maxMessages int, ttl time.Duration) domain.ChatHistoryRepository {
	if prefix == "" {
		prefix = "agent-scrum:chat:"
	}
	return &redisChatHistoryRepository{client: client, prefix: prefix, maxMessages: maxMessages, ttl: ttl}
}

func (r *redisChatHistoryRepository) key(uid int64) string {
	return r.prefix + strconv.FormatInt(uid, 10)
}

// List 获取对话历史，按时间正序
func (r *redisChatHistoryRepository) List(ctx context.Context, uid int64) ([]domain.ChatMessage, error) {
	raw, err := r.client.LRange(ctx, r.key(uid), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg domain.ChatMessage
		if err := sonic.UnmarshalString(item, &msg); err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

// Append 追加消息
func (r *redisChatHistoryRepository) Append(ctx context.Context, uid int64, messages ...domain.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(messages))
	for _, msg := range messages {
		s, err := sonic.MarshalString(msg)
		if err != nil {
			return err
		}
		values = append(values, s)
	}

	key := r.key(uid)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		if r.maxMessages > 0 {
			pipe.LTrim(ctx, key, int64(-r.maxMessages), -1)
		}
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	return err
}

// Clear 清空对话历史
func (r *redisChatHistoryRepository) Clear(ctx context.Context, uid int64) error {
	return r.client.Del(ctx, r.key(uid)).Err()
}

// PurgeBefore 过期由 EXPIRE 处理
func (r *redisChatHistoryRepository) PurgeBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}
