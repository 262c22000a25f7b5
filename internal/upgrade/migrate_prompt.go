package upgrade

import (
	"context"

	"github.com/haierkeys/agent-scrum-service/internal/dao"
	"github.com/haierkeys/agent-scrum-service/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RowVersionBackfillMigrate 旧数据 row_version 为空或 0 时置为 1
type RowVersionBackfillMigrate struct{}

func (m *RowVersionBackfillMigrate) Version() string {
	return "0.1.0"
}

func (m *RowVersionBackfillMigrate) Description() string {
	return "Backfill prompt.row_version for rows written before optimistic locking"
}

func (m *RowVersionBackfillMigrate) Up(ctx context.Context, tx *gorm.DB, logger *zap.Logger) error {
	res := tx.Model(&model.Prompt{}).
		Where("row_version IS NULL OR row_version < ?", 1).
		Update("row_version", 1)
	if res.Error != nil {
		return res.Error
	}
	logger.Info("row_version backfilled", zap.Int64("rows", res.RowsAffected))
	return nil
}

// LineageRepairMigrate 每条版本链恰好一个当前版本：无或多个时以最高版本为准；同时补齐版本号计数
type LineageRepairMigrate struct{}

func (m *LineageRepairMigrate) Version() string {
	return "0.1.1"
}

func (m *LineageRepairMigrate) Description() string {
	return "Ensure exactly one current version per prompt lineage and seed version counters"
}

func (m *LineageRepairMigrate) Up(ctx context.Context, tx *gorm.DB, logger *zap.Logger) error {
	n, err := dao.RepairPromptLineages(tx)
	if err != nil {
		return err
	}
	logger.Info("prompt lineages repaired", zap.Int("lineages", n))
	return nil
}
