package dao

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/internal/model"
	"github.com/haierkeys/agent-scrum-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// promptRepository 实现 domain.PromptRepository 接口
// 所有修改版本链的操作都在单个事务中完成，并通过 row_version 做比较交换
type promptRepository struct {
	dao *Dao
}

// NewPromptRepository 创建 PromptRepository 实例
func NewPromptRepository(dao *Dao) domain.PromptRepository {
	return &promptRepository{dao: dao}
}

func lineageKey(rootID int64) string {
	return "prompt:" + strconv.FormatInt(rootID, 10)
}

func lineageScope(rootID int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ? OR original_prompt_id = ?", rootID, rootID)
	}
}

// setHighWater 写入版本链已分配的最高版本号
func setHighWater(tx *gorm.DB, rootID int64, version int) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "root_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"latest_version": version}),
	}).Create(&model.PromptLineage{RootID: rootID, LatestVersion: version}).Error
}

// nextVersion 下一个版本号：已分配最高值与现存最高版本中较大者加一
func nextVersion(tx *gorm.DB, rootID int64) (int, error) {
	var maxVersion int
	if err := tx.Model(&model.Prompt{}).
		Scopes(lineageScope(rootID)).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error; err != nil {
		return 0, err
	}

	var hw model.PromptLineage
	err := tx.Where("root_id = ?", rootID).Limit(1).Find(&hw).Error
	if err != nil {
		return 0, err
	}
	if hw.LatestVersion > maxVersion {
		maxVersion = hw.LatestVersion
	}
	return maxVersion + 1, nil
}

func rootOf(m *model.Prompt) int64 {
	if m.OriginalPromptID != nil {
		return *m.OriginalPromptID
	}
	return m.ID
}

// toDomain 将数据库模型转换为领域模型
func (r *promptRepository) toDomain(m *model.Prompt) *domain.Prompt {
	if m == nil {
		return nil
	}
	p := &domain.Prompt{
		ID:               m.ID,
		Name:             m.Name,
		Description:      m.Description,
		Content:          m.Content,
		Category:         m.Category,
		Version:          m.Version,
		CreatedAt:        m.CreatedAt,
		CreatedBy:        m.CreatedBy,
		IsCurrentVersion: m.IsCurrentVersion,
		RowVersion:       m.RowVersion,
	}
	if m.OriginalPromptID != nil {
		id := *m.OriginalPromptID
		p.OriginalPromptID = &id
	}
	return p
}

func (r *promptRepository) toDomainList(ms []*model.Prompt) []*domain.Prompt {
	out := make([]*domain.Prompt, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out
}

// ListCurrent 所有当前版本，按创建时间倒序
func (r *promptRepository) ListCurrent(ctx context.Context) ([]*domain.Prompt, error) {
	var ms []*model.Prompt
	err := r.dao.DB(ctx).
		Where("is_current_version = ?", true).
		Order("created_at DESC").Order("id DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return r.toDomainList(ms), nil
}

// GetByID 根据ID获取提示词
func (r *promptRepository) GetByID(ctx context.Context, id int64) (*domain.Prompt, error) {
	var m model.Prompt
	if err := r.dao.DB(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetLineage 获取 id 所在的版本链，按版本号倒序
func (r *promptRepository) GetLineage(ctx context.Context, id int64) ([]*domain.Prompt, error) {
	var m model.Prompt
	if err := r.dao.DB(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}

	var ms []*model.Prompt
	err := r.dao.DB(ctx).
		Scopes(lineageScope(rootOf(&m))).
		Order("version DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return r.toDomainList(ms), nil
}

// Create 创建版本链根记录
func (r *promptRepository) Create(ctx context.Context, draft *domain.PromptDraft, createdAt time.Time) (*domain.Prompt, error) {
	m := &model.Prompt{
		Name:             draft.Name,
		Description:      draft.Description,
		Content:          draft.Content,
		Category:         draft.Category,
		Version:          1,
		CreatedAt:        createdAt,
		CreatedBy:        draft.CreatedBy,
		IsCurrentVersion: true,
		RowVersion:       1,
	}

	err := r.dao.ExecuteWrite(ctx, "prompt:new", func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(m).Error; err != nil {
				return err
			}
			return setHighWater(tx, m.ID, m.Version)
		})
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// CreateVersion 在 existingID 所在的版本链上新建版本
func (r *promptRepository) CreateVersion(ctx context.Context, existingID int64, draft *domain.PromptDraft, createdAt time.Time, expectedRowVersion *int64) (*domain.Prompt, error) {
	existing, err := r.GetByID(ctx, existingID)
	if err != nil {
		return nil, err
	}

	var created *model.Prompt
	err = r.dao.ExecuteWrite(ctx, lineageKey(existing.LineageID()), func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			var cur model.Prompt
			if err := tx.First(&cur, existingID).Error; err != nil {
				return err
			}
			if expectedRowVersion != nil && cur.RowVersion != *expectedRowVersion {
				return domain.ErrPromptConflict
			}
			rootID := rootOf(&cur)

			version, err := nextVersion(tx, rootID)
			if err != nil {
				return err
			}

			var currents []model.Prompt
			if err := tx.Scopes(lineageScope(rootID)).
				Where("is_current_version = ?", true).
				Find(&currents).Error; err != nil {
				return err
			}

			touchedExisting := false
			for i := range currents {
				c := &currents[i]
				if err := casUpdate(tx, c.ID, c.RowVersion, map[string]interface{}{"is_current_version": false}); err != nil {
					return err
				}
				if c.ID == cur.ID {
					touchedExisting = true
				}
			}

			// 基于非当前版本编辑时也要占用其 row_version，使基于同一快照的并发编辑冲突
			if !touchedExisting && expectedRowVersion != nil {
				if err := casUpdate(tx, cur.ID, cur.RowVersion, map[string]interface{}{}); err != nil {
					return err
				}
			}

			created = &model.Prompt{
				Name:             draft.Name,
				Description:      draft.Description,
				Content:          draft.Content,
				Category:         draft.Category,
				Version:          version,
				CreatedAt:        createdAt,
				CreatedBy:        draft.CreatedBy,
				OriginalPromptID: &rootID,
				IsCurrentVersion: true,
				RowVersion:       1,
			}
			if err := tx.Create(created).Error; err != nil {
				return err
			}
			return setHighWater(tx, rootID, version)
		})
	})
	if err != nil {
		return nil, err
	}

	r.dao.Logger().Debug("prompt version created",
		zap.Int64(logger.FieldPromptID, created.ID),
		zap.Int64(logger.FieldLineageID, *created.OriginalPromptID),
		zap.Int(logger.FieldVersion, created.Version))

	return r.toDomain(created), nil
}

// casUpdate 仅当 row_version 未变时更新，并递增 row_version；未命中返回冲突
func casUpdate(tx *gorm.DB, id, rowVersion int64, values map[string]interface{}) error {
	values["row_version"] = gorm.Expr("row_version + 1")
	res := tx.Model(&model.Prompt{}).
		Where("id = ? AND row_version = ?", id, rowVersion).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPromptConflict
	}
	return nil
}

// Delete 删除记录，必要时提升链内最高版本为当前版本
func (r *promptRepository) Delete(ctx context.Context, id int64, expectedRowVersion *int64) (*domain.Prompt, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var promoted *model.Prompt
	err = r.dao.ExecuteWrite(ctx, lineageKey(existing.LineageID()), func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			var cur model.Prompt
			if err := tx.First(&cur, id).Error; err != nil {
				return err
			}

			rv := cur.RowVersion
			if expectedRowVersion != nil {
				rv = *expectedRowVersion
			}
			res := tx.Where("id = ? AND row_version = ?", cur.ID, rv).Delete(&model.Prompt{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrPromptConflict
			}

			var next model.Prompt
			err := tx.Scopes(lineageScope(rootOf(&cur))).
				Order("version DESC").
				First(&next).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// 整条链已删除，计数随之移除
				return tx.Where("root_id = ?", rootOf(&cur)).Delete(&model.PromptLineage{}).Error
			}
			if err != nil {
				return err
			}
			if !cur.IsCurrentVersion {
				return nil
			}
			if err := casUpdate(tx, next.ID, next.RowVersion, map[string]interface{}{"is_current_version": true}); err != nil {
				return err
			}
			next.IsCurrentVersion = true
			next.RowVersion++
			promoted = &next
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if promoted != nil {
		r.dao.Logger().Debug("prompt version promoted after delete",
			zap.Int64(logger.FieldPromptID, promoted.ID),
			zap.Int(logger.FieldVersion, promoted.Version))
	}
	return r.toDomain(promoted), nil
}

// RepairLineages 修复版本链：无当前版本或多个当前版本时，以最高版本为当前版本
func (r *promptRepository) RepairLineages(ctx context.Context) (int, error) {
	repaired := 0
	err := r.dao.ExecuteWrite(ctx, "prompt:repair", func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			n, err := RepairPromptLineages(tx)
			repaired = n
			return err
		})
	})
	return repaired, err
}

// RepairPromptLineages 在给定事务内修复版本链并补齐版本号计数，供迁移复用
func RepairPromptLineages(tx *gorm.DB) (int, error) {
	var rows []model.Prompt
	if err := tx.Select("id", "version", "original_prompt_id", "is_current_version", "row_version").
		Order("id").Find(&rows).Error; err != nil {
		return 0, err
	}

	type lineage struct {
		currents int
		best     *model.Prompt
		members  []*model.Prompt
	}
	lineages := make(map[int64]*lineage)
	var order []int64
	for i := range rows {
		m := &rows[i]
		root := rootOf(m)
		l, ok := lineages[root]
		if !ok {
			l = &lineage{}
			lineages[root] = l
			order = append(order, root)
		}
		l.members = append(l.members, m)
		if m.IsCurrentVersion {
			l.currents++
		}
		if l.best == nil || m.Version > l.best.Version || (m.Version == l.best.Version && m.ID > l.best.ID) {
			l.best = m
		}
	}

	var counters []model.PromptLineage
	if err := tx.Find(&counters).Error; err != nil {
		return 0, err
	}
	highWater := make(map[int64]int, len(counters))
	for _, c := range counters {
		highWater[c.RootID] = c.LatestVersion
	}

	repaired := 0
	for _, root := range order {
		l := lineages[root]
		// 计数不低于链内最高版本
		if hw, ok := highWater[root]; !ok || hw < l.best.Version {
			if err := setHighWater(tx, root, l.best.Version); err != nil {
				return repaired, err
			}
		}
		if l.currents == 1 {
			continue
		}
		for _, m := range l.members {
			want := m.ID == l.best.ID
			if m.IsCurrentVersion == want {
				continue
			}
			if err := tx.Model(&model.Prompt{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
				"is_current_version": want,
				"row_version":        gorm.Expr("row_version + 1"),
			}).Error; err != nil {
				return repaired, err
			}
		}
		repaired++
	}
	return repaired, nil
}

// Stats 报表统计
func (r *promptRepository) Stats(ctx context.Context) (*domain.PromptStats, error) {
	db := r.dao.DB(ctx)
	stats := &domain.PromptStats{}

	if err := db.Model(&model.Prompt{}).Count(&stats.Versions).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Prompt{}).
		Select("COUNT(DISTINCT COALESCE(original_prompt_id, id))").
		Scan(&stats.Lineages).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Prompt{}).
		Select("COALESCE(MAX(version), 0)").
		Scan(&stats.MaxVersion).Error; err != nil {
		return nil, err
	}

	var cats []struct {
		Category string
		Count    int64
	}
	if err := db.Model(&model.Prompt{}).
		Select("category, COUNT(*) AS count").
		Where("is_current_version = ?", true).
		Group("category").
		Order("COUNT(*) DESC").Order("category").
		Scan(&cats).Error; err != nil {
		return nil, err
	}
	for _, c := range cats {
		stats.Categories = append(stats.Categories, domain.CategoryCount{Category: c.Category, Count: c.Count})
	}

	var latest model.Prompt
	err := db.Order("created_at DESC").First(&latest).Error
	if err == nil {
		t := latest.CreatedAt
		stats.LatestCreated = &t
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return stats, nil
}
