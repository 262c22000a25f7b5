package task

import (
	"context"
	"sync/atomic"

	"github.com/haierkeys/agent-scrum-service/internal/app"
	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CredentialRevalidateTask 重新校验已保存的凭据，更新 IsValid 与 LastValidatedAt
type CredentialRevalidateTask struct {
	app  *app.App
	spec string
}

func (t *CredentialRevalidateTask) Name() string {
	return "credential_revalidate"
}

func (t *CredentialRevalidateTask) Spec() string {
	return t.spec
}

func (t *CredentialRevalidateTask) IsStartupRun() bool {
	return false
}

// Run 通过 Worker Pool 并发校验
func (t *CredentialRevalidateTask) Run(ctx context.Context) error {
	creds, err := t.app.CredentialService.ListAll(ctx)
	if err != nil {
		return err
	}

	var valid, invalid atomic.Int64
	var g errgroup.Group
	for _, c := range creds {
		c := c
		g.Go(func() error {
			return t.app.SubmitTask(ctx, func(ctx context.Context) error {
				return t.revalidate(ctx, c, &valid, &invalid)
			})
		})
	}
	err = g.Wait()

	t.app.Logger().Info("task log",
		zap.String("task", t.Name()),
		zap.Int("total", len(creds)),
		zap.Int64("valid", valid.Load()),
		zap.Int64("invalid", invalid.Load()))
	return err
}

func (t *CredentialRevalidateTask) revalidate(ctx context.Context, c *domain.Credential, valid, invalid *atomic.Int64) error {
	ok, err := t.app.CredentialService.Revalidate(ctx, c)
	if err != nil {
		t.app.Logger().Warn("credential revalidate failed", zap.Int64(logger.FieldUID, c.UID), zap.Error(err))
		return err
	}
	if ok {
		valid.Add(1)
	} else {
		invalid.Add(1)
	}
	return nil
}

// NewCredentialRevalidateTask cron 表达式为空时不启用
func NewCredentialRevalidateTask(appContainer *app.App) (Task, error) {
	spec := appContainer.Config().Task.CredentialRevalidate
	if spec == "" {
		return nil, nil
	}
	return &CredentialRevalidateTask{app: appContainer, spec: spec}, nil
}

func init() {
	RegisterWithApp(NewCredentialRevalidateTask)
}
