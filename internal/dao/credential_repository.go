package dao

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/internal/model"

	"gorm.io/gorm"
)

// credentialRepository 实现 domain.CredentialRepository 接口
type credentialRepository struct {
	dao *Dao
}

// NewCredentialRepository 创建 CredentialRepository 实例
func NewCredentialRepository(dao *Dao) domain.CredentialRepository {
	return &credentialRepository{dao: dao}
}

func (r *credentialRepository) toDomain(m *model.Credential) *domain.Credential {
	if m == nil {
		return nil
	}
	c := &domain.Credential{
		ID:              m.ID,
		UID:             m.UID,
		CredentialsJSON: m.CredentialsJSON,
		IsValid:         m.IsValid,
		UploadedAt:      m.UploadedAt,
	}
	if m.LastValidatedAt != nil {
		t := *m.LastValidatedAt
		c.LastValidatedAt = &t
	}
	return c
}

// GetByUID 获取用户的凭据
func (r *credentialRepository) GetByUID(ctx context.Context, uid int64) (*domain.Credential, error) {
	var m model.Credential
	if err := r.dao.DB(ctx).Where("uid = ?", uid).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Upsert 存在则覆盖，不存在则创建
func (r *credentialRepository) Upsert(ctx context.Context, credential *domain.Credential) (*domain.Credential, error) {
	var saved model.Credential
	key := "credential:" + strconv.FormatInt(credential.UID, 10)

	err := r.dao.ExecuteWrite(ctx, key, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			err := tx.Where("uid = ?", credential.UID).First(&saved).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			saved.UID = credential.UID
			saved.CredentialsJSON = credential.CredentialsJSON
			saved.IsValid = credential.IsValid
			saved.UploadedAt = credential.UploadedAt
			saved.LastValidatedAt = credential.LastValidatedAt
			return tx.Save(&saved).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(&saved), nil
}

// List 获取全部凭据
func (r *credentialRepository) List(ctx context.Context) ([]*domain.Credential, error) {
	var ms []*model.Credential
	if err := r.dao.DB(ctx).Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Credential, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out, nil
}

// UpdateValidation 更新校验结果
func (r *credentialRepository) UpdateValidation(ctx context.Context, id int64, isValid bool, validatedAt time.Time) error {
	return r.dao.ExecuteWrite(ctx, "credential:validate:"+strconv.FormatInt(id, 10), func(db *gorm.DB) error {
		res := db.Model(&model.Credential{}).Where("id = ?", id).Updates(map[string]interface{}{
			"is_valid":          isValid,
			"last_validated_at": validatedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
