package dao

import (
	"context"
	"strconv"

	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/internal/model"
	pkgapp "github.com/haierkeys/agent-scrum-service/pkg/app"
	"github.com/haierkeys/agent-scrum-service/pkg/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository 实现 domain.UserRepository 接口
type userRepository struct {
	dao *Dao
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(dao *Dao) domain.UserRepository {
	return &userRepository{dao: dao}
}

func userKey(uid int64) string {
	return "user:" + strconv.FormatInt(uid, 10)
}

func (r *userRepository) toDomain(m *model.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		UID:           m.UID,
		Email:         m.Email,
		Username:      m.Username,
		Password:      m.Password,
		EmailVerified: m.EmailVerified,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// loadGrants 加载角色与声明
func (r *userRepository) loadGrants(db *gorm.DB, u *domain.User) error {
	var roles []model.UserRole
	if err := db.Where("uid = ?", u.UID).Order("id").Find(&roles).Error; err != nil {
		return err
	}
	for _, role := range roles {
		u.Roles = append(u.Roles, role.Role)
	}

	var claims []model.UserClaim
	if err := db.Where("uid = ?", u.UID).Order("id").Find(&claims).Error; err != nil {
		return err
	}
	for _, c := range claims {
		u.Claims = append(u.Claims, domain.Claim{Type: c.ClaimType, Value: c.ClaimValue})
	}
	return nil
}

func (r *userRepository) getBy(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	db := r.dao.DB(ctx)
	var m model.User
	if err := db.Where(query, arg).First(&m).Error; err != nil {
		return nil, err
	}
	u := r.toDomain(&m)
	if err := r.loadGrants(db, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID 根据ID获取用户
func (r *userRepository) GetByID(ctx context.Context, uid int64) (*domain.User, error) {
	return r.getBy(ctx, "uid = ?", uid)
}

// GetByEmail 根据邮箱获取用户，按小写比较以兼容规范化之前写入的记录
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "LOWER(email) = ?", util.NormalizeEmail(email))
}

// GetByUsername 根据用户名获取用户
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, "username = ?", username)
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m := &model.User{
		Email:         util.NormalizeEmail(user.Email),
		Username:      user.Username,
		Password:      user.Password,
		EmailVerified: user.EmailVerified,
	}

	err := r.dao.ExecuteWrite(ctx, "user:new", func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(m).Error; err != nil {
				return err
			}
			if err := grantRoles(tx, m.UID, user.Roles); err != nil {
				return err
			}
			return grantClaims(tx, m.UID, user.Claims)
		})
	})
	if err != nil {
		return nil, err
	}

	out := r.toDomain(m)
	out.Roles = append(out.Roles, user.Roles...)
	out.Claims = append(out.Claims, user.Claims...)
	return out, nil
}

func grantRoles(tx *gorm.DB, uid int64, roles []string) error {
	if len(roles) == 0 {
		return nil
	}
	rows := make([]model.UserRole, 0, len(roles))
	for _, role := range roles {
		rows = append(rows, model.UserRole{UID: uid, Role: role})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func grantClaims(tx *gorm.DB, uid int64, claims []domain.Claim) error {
	if len(claims) == 0 {
		return nil
	}
	rows := make([]model.UserClaim, 0, len(claims))
	for _, c := range claims {
		rows = append(rows, model.UserClaim{UID: uid, ClaimType: c.Type, ClaimValue: c.Value})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// GrantRoles 授予角色
func (r *userRepository) GrantRoles(ctx context.Context, uid int64, roles ...string) error {
	return r.dao.ExecuteWrite(ctx, userKey(uid), func(db *gorm.DB) error {
		return grantRoles(db, uid, roles)
	})
}

// GrantClaims 授予声明
func (r *userRepository) GrantClaims(ctx context.Context, uid int64, claims ...domain.Claim) error {
	return r.dao.ExecuteWrite(ctx, userKey(uid), func(db *gorm.DB) error {
		return grantClaims(db, uid, claims)
	})
}

// List 分页获取用户列表
func (r *userRepository) List(ctx context.Context, page, pageSize int) ([]*domain.User, error) {
	db := r.dao.DB(ctx)
	var ms []*model.User
	if err := db.Order("uid").Offset(pkgapp.GetPageOffset(page, pageSize)).Limit(pageSize).Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(ms))
	for _, m := range ms {
		u := r.toDomain(m)
		if err := r.loadGrants(db, u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// Count 用户总数
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.dao.DB(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}
