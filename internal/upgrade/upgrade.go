// Package upgrade 数据库升级脚本，按语义化版本顺序执行且只执行一次
package upgrade

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/model"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"gorm.io/gorm"
)

// SchemaVersion 数据库版本记录表
type SchemaVersion struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Version     string    `gorm:"not null;uniqueIndex;type:varchar(64)" json:"version"`
	Description string    `gorm:"type:text" json:"description"`
	AppliedAt   time.Time `gorm:"not null" json:"applied_at"`
}

// TableName 指定表名
func (SchemaVersion) TableName() string {
	return "schema_version"
}

// Migration 定义升级接口
type Migration interface {
	Version() string
	Description() string
	Up(ctx context.Context, tx *gorm.DB, logger *zap.Logger) error
}

// MigrationManager 升级管理器
type MigrationManager struct {
	db             *gorm.DB
	logger         *zap.Logger
	runningVersion string
	migrations     []Migration
}

// DefaultMigrations 已注册的升级脚本
func DefaultMigrations() []Migration {
	return []Migration{
		&LineageRepairMigrate{},
		&RowVersionBackfillMigrate{},
	}
}

// NewMigrationManager 创建升级管理器
// runningVersion 为当前程序版本，高于该版本的脚本不会执行
func NewMigrationManager(db *gorm.DB, logger *zap.Logger, runningVersion string, migrations ...Migration) *MigrationManager {
	if len(migrations) == 0 {
		migrations = DefaultMigrations()
	}
	return &MigrationManager{
		db:             db,
		logger:         logger,
		runningVersion: canonical(runningVersion),
		migrations:     migrations,
	}
}

// canonical 补全 "v" 前缀，semver 库需要
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// Pending 未执行的脚本，按版本升序
func (m *MigrationManager) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.getAppliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]Migration, 0, len(m.migrations))
	for _, mg := range m.migrations {
		v := canonical(mg.Version())
		if !semver.IsValid(v) {
			return nil, errors.Errorf("migration %T has invalid version %q", mg, mg.Version())
		}
		if applied[v] {
			continue
		}
		if semver.IsValid(m.runningVersion) && semver.Compare(v, m.runningVersion) > 0 {
			m.logger.Info("skip migration newer than running version",
				zap.String("scriptVersion", v),
				zap.String("runningVersion", m.runningVersion))
			continue
		}
		pending = append(pending, mg)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return semver.Compare(canonical(pending[i].Version()), canonical(pending[j].Version())) < 0
	})
	return pending, nil
}

// Run 执行升级
func (m *MigrationManager) Run(ctx context.Context) (int, error) {
	m.logger.Info("Migration started", zap.String("runningVersion", m.runningVersion))

	if err := model.AutoMigrate(m.db, ""); err != nil {
		return 0, errors.Wrap(err, "auto migrate models")
	}
	// 确保 schema_version 表存在
	if err := m.db.WithContext(ctx).AutoMigrate(&SchemaVersion{}); err != nil {
		return 0, errors.Wrap(err, "create schema_version table")
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}

	executed := 0
	for _, migration := range pending {
		m.logger.Info("applying migration",
			zap.String("scriptVersion", migration.Version()),
			zap.String("desc", migration.Description()))

		// 在事务中执行升级并记录版本
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(ctx, tx, m.logger); err != nil {
				return err
			}
			return tx.Create(&SchemaVersion{
				Version:     canonical(migration.Version()),
				Description: migration.Description(),
				AppliedAt:   time.Now(),
			}).Error
		})
		if err != nil {
			return executed, errors.Wrapf(err, "apply migration %s", migration.Version())
		}

		m.logger.Info("migration applied successfully", zap.String("scriptVersion", migration.Version()))
		executed++
	}

	if executed == 0 {
		m.logger.Info("database is already up to date")
	} else {
		m.logger.Info("upgrade completed", zap.Int("migrations_applied", executed))
	}
	return executed, nil
}

// getAppliedVersions 获取已应用的数据库版本
func (m *MigrationManager) getAppliedVersions(ctx context.Context) (map[string]bool, error) {
	var versions []SchemaVersion
	if err := m.db.WithContext(ctx).Find(&versions).Error; err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[canonical(v.Version)] = true
	}
	return applied, nil
}
