package service

import (
	"context"
	"testing"

	"github.com/haierkeys/agent-scrum-service/internal/dao"
	"github.com/haierkeys/agent-scrum-service/pkg/writequeue"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testRepos struct {
	dao *dao.Dao
}

func newTestRepos(t *testing.T) *testRepos {
	t.Helper()

	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{
		Type:        "sqlite",
		Path:        ":memory:",
		AutoMigrate: true,
	}, nil)
	require.NoError(t, err)

	wq := writequeue.New(nil, nil)
	t.Cleanup(func() {
		_ = wq.Shutdown(context.Background())
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &testRepos{dao: dao.New(db, context.Background(), dao.WithWriteQueueManager(wq))}
}

func testConfig() *ServiceConfig {
	return &ServiceConfig{
		Security: SecurityServiceConfig{AdminEmail: "admin@example.com", AdminPassword: "secret123"},
		Chat:     ChatServiceConfig{Model: "test-model", HistoryMaxMessages: 50},
	}
}

var nop = zap.NewNop()
