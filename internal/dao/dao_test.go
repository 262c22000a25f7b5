package dao

import (
	"context"
	"testing"

	"github.com/haierkeys/agent-scrum-service/pkg/writequeue"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDao 内存 SQLite，单连接保证所有会话看到同一个库
func newTestDao(t *testing.T) *Dao {
	t.Helper()

	db, err := NewDBEngineWithConfig(DatabaseConfig{
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

	return New(db, context.Background(), WithWriteQueueManager(wq))
}

func rawDB(d *Dao) *gorm.DB {
	return d.DB(context.Background())
}
