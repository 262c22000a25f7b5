package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/app"
	"github.com/haierkeys/agent-scrum-service/internal/dao"
	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/pkg/safe_close"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

const validJSON = `{"type":"service_account","project_id":"p","private_key_id":"k","private_key":"pk","client_email":"svc@p.iam.gserviceaccount.com"}`

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg, err := app.ParseConfig([]byte("database:\n  path: \":memory:\"\n"))
	require.NoError(t, err)

	db, err := dao.NewDBEngineWithConfig(cfg.GetDatabaseConfig(), nil)
	require.NoError(t, err)

	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

type fakeTask struct {
	spec    string
	startup bool
	runs    atomic.Int32
	ran     chan struct{}
	err     error
}

func (f *fakeTask) Name() string       { return "fake" }
func (f *fakeTask) Spec() string       { return f.spec }
func (f *fakeTask) IsStartupRun() bool { return f.startup }
func (f *fakeTask) Run(ctx context.Context) error {
	f.runs.Add(1)
	select {
	case f.ran <- struct{}{}:
	default:
	}
	return f.err
}

func TestScheduler_StartupRunAndStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	ft := &fakeTask{spec: "@every 1h", startup: true, ran: make(chan struct{}, 1), err: errors.New("boom")}
	require.NoError(t, s.AddTask(ft))
	s.Start()

	select {
	case <-ft.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("startup run did not happen")
	}

	sc.SendCloseSignal(nil)
	assert.NoError(t, sc.WaitClosed())
	assert.Equal(t, int32(1), ft.runs.Load())
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(zap.NewNop(), safe_close.NewSafeClose())
	assert.Error(t, s.AddTask(&fakeTask{spec: "not a cron spec"}))
	assert.Empty(t, s.Tasks())
}

func TestManager_RegisterTasks(t *testing.T) {
	a := newTestApp(t)
	m := NewManager(a, safe_close.NewSafeClose())
	require.NoError(t, m.RegisterTasks())

	names := make([]string, 0)
	for _, task := range m.scheduler.Tasks() {
		names = append(names, task.Name())
	}
	assert.ElementsMatch(t, []string{"credential_revalidate", "chat_history_purge"}, names)
}

func TestManager_DisabledTasks(t *testing.T) {
	a := newTestApp(t)
	a.Config().Task.CredentialRevalidate = ""
	a.Config().Task.ChatHistoryPurge = ""

	m := NewManager(a, safe_close.NewSafeClose())
	require.NoError(t, m.RegisterTasks())
	assert.Empty(t, m.scheduler.Tasks())
}

func TestCredentialRevalidateTask(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	_, err := a.CredentialService.Upload(ctx, 1, []byte(validJSON))
	require.NoError(t, err)
	// 直接写入一份已失效的凭据
	_, err = a.CredentialRepo.Upsert(ctx, &domain.Credential{UID: 2, CredentialsJSON: `{"type":"user"}`, IsValid: true, UploadedAt: time.Now()})
	require.NoError(t, err)

	task, err := NewCredentialRevalidateTask(a)
	require.NoError(t, err)
	require.NoError(t, task.Run(ctx))

	c1, err := a.CredentialRepo.GetByUID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, c1.IsValid)

	c2, err := a.CredentialRepo.GetByUID(ctx, 2)
	require.NoError(t, err)
	assert.False(t, c2.IsValid)
	require.NotNil(t, c2.LastValidatedAt)
}

func TestChatHistoryPurgeTask(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, a.ChatHistoryRepo.Append(ctx, 7,
		domain.ChatMessage{Role: domain.ChatRoleUser, Content: "old", CreatedAt: now.Add(-30 * 24 * time.Hour)},
		domain.ChatMessage{Role: domain.ChatRoleUser, Content: "new", CreatedAt: now.Add(-time.Hour)},
	))

	task, err := NewChatHistoryPurgeTask(a)
	require.NoError(t, err)
	require.NotNil(t, task)
	task.(*ChatHistoryPurgeTask).now = func() time.Time { return now }
	require.NoError(t, task.Run(ctx))

	msgs, err := a.ChatHistoryRepo.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "new", msgs[0].Content)
}
