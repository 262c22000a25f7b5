package task

import (
	"context"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/app"

	"go.uber.org/zap"
)

// ChatHistoryPurgeTask 删除超过保留时长的对话消息，仅用于数据库存储
type ChatHistoryPurgeTask struct {
	app  *app.App
	spec string
	ttl  time.Duration
	now  func() time.Time
}

func (t *ChatHistoryPurgeTask) Name() string {
	return "chat_history_purge"
}

func (t *ChatHistoryPurgeTask) Spec() string {
	return t.spec
}

func (t *ChatHistoryPurgeTask) IsStartupRun() bool {
	return true
}

func (t *ChatHistoryPurgeTask) Run(ctx context.Context) error {
	before := t.now().UTC().Add(-t.ttl)
	n, err := t.app.ChatHistoryRepo.PurgeBefore(ctx, before)
	if err != nil {
		return err
	}
	if n > 0 {
		t.app.Logger().Info("task log",
			zap.String("task", t.Name()),
			zap.Int64("purged", n),
			zap.Time("before", before))
	}
	return nil
}

// NewChatHistoryPurgeTask Redis 存储依赖键过期，不启用
func NewChatHistoryPurgeTask(appContainer *app.App) (Task, error) {
	cfg := appContainer.Config()
	if cfg.Task.ChatHistoryPurge == "" || appContainer.HistoryStore() != app.HistoryStoreDatabase {
		return nil, nil
	}
	return &ChatHistoryPurgeTask{
		app:  appContainer,
		spec: cfg.Task.ChatHistoryPurge,
		ttl:  cfg.GetHistoryTTL(),
		now:  time.Now,
	}, nil
}

func init() {
	RegisterWithApp(NewChatHistoryPurgeTask)
}
