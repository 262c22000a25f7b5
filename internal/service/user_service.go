package service

import (
	"context"
	"errors"
	"strings"

	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/internal/dto"
	"github.com/haierkeys/agent-scrum-service/pkg/app"
	"github.com/haierkeys/agent-scrum-service/pkg/code"
	"github.com/haierkeys/agent-scrum-service/pkg/logger"
	"github.com/haierkeys/agent-scrum-service/pkg/util"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// adminClaims 初始化管理员拥有的声明
var adminClaims = []domain.Claim{
	{Type: domain.ClaimPermission, Value: domain.PermissionManageUsers},
	{Type: domain.ClaimPermission, Value: domain.PermissionViewReports},
	{Type: domain.ClaimPermission, Value: domain.PermissionManageSettings},
}

// UserService 定义用户业务服务接口
type UserService interface {
	// Login 用户登录，签发携带角色与声明的 Token
	Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserLoginDTO, error)

	// Create 管理端创建用户
	Create(ctx context.Context, params *dto.UserCreateRequest) (*dto.UserDTO, error)

	// GetInfo 获取用户信息
	GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error)

	// List 分页获取用户
	List(ctx context.Context, page, pageSize int) ([]*dto.UserDTO, int64, error)

	// SeedAdmin 按配置创建或补全管理员账号，可重复执行
	SeedAdmin(ctx context.Context) error
}

// userService 实现 UserService 接口
type userService struct {
	userRepo     domain.UserRepository
	tokenManager app.TokenManager
	logger       *zap.Logger
	config       *ServiceConfig
}

// NewUserService 创建 UserService 实例
func NewUserService(userRepo domain.UserRepository, tokenManager app.TokenManager, logger *zap.Logger, config *ServiceConfig) UserService {
	return &userService{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		logger:       logger,
		config:       config,
	}
}

// domainToDTO 将领域模型转换为 DTO
func (s *userService) domainToDTO(user *domain.User) *dto.UserDTO {
	if user == nil {
		return nil
	}
	out := &dto.UserDTO{}
	_ = copier.Copy(out, user)
	out.Claims = user.ClaimMap()
	if out.Roles == nil {
		out.Roles = []string{}
	}
	return out
}

// Login 用户登录
func (s *userService) Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserLoginDTO, error) {
	var user *domain.User
	var err error

	if util.IsValidEmail(strings.TrimSpace(params.Credentials)) {
		user, err = s.userRepo.GetByEmail(ctx, util.NormalizeEmail(params.Credentials))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, params.Credentials)
	}
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("user lookup failed", zap.Error(err))
			return nil, code.ErrorDBQuery
		}
		// 不暴露用户是否存在，统一返回登录失败
		return nil, code.ErrorUserLoginFailed
	}

	if !util.CheckPasswordHash(user.Password, params.Password) {
		return nil, code.ErrorUserLoginFailed
	}

	token, err := s.tokenManager.Generate(app.UserEntity{
		UID:           user.UID,
		Nickname:      user.Username,
		Email:         util.NormalizeEmail(user.Email),
		EmailVerified: user.EmailVerified,
		Roles:         user.Roles,
		Claims:        user.ClaimMap(),
		IP:            clientIP,
	})
	if err != nil {
		return nil, code.ErrorTokenGenerate.WithDetails(err.Error())
	}

	s.logger.Info("user login", zap.Int64(logger.FieldUID, user.UID))
	return &dto.UserLoginDTO{UserDTO: *s.domainToDTO(user), Token: token}, nil
}

// Create 管理端创建用户
func (s *userService) Create(ctx context.Context, params *dto.UserCreateRequest) (*dto.UserDTO, error) {
	email := util.NormalizeEmail(params.Email)
	if !util.IsValidEmail(email) {
		return nil, code.ErrorUserEmailInvalid
	}
	if !util.IsValidUsername(params.Username) {
		return nil, code.ErrorUserUsernameInvalid
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, code.ErrorUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorDBQuery
	}
	if _, err := s.userRepo.GetByUsername(ctx, params.Username); err == nil {
		return nil, code.ErrorUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorDBQuery
	}

	password, err := util.GeneratePasswordHash(params.Password)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Email:    email,
		Username: params.Username,
		Password: password,
		Roles:    params.Roles,
	})
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return s.domainToDTO(user), nil
}

// GetInfo 获取用户信息
func (s *userService) GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorUserNotFound
		}
		return nil, code.ErrorDBQuery
	}
	return s.domainToDTO(user), nil
}

// List 分页获取用户
func (s *userService) List(ctx context.Context, page, pageSize int) ([]*dto.UserDTO, int64, error) {
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, code.ErrorDBQuery
	}
	users, err := s.userRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery
	}
	out := make([]*dto.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, s.domainToDTO(u))
	}
	return out, total, nil
}

// SeedAdmin 按配置创建管理员；已存在时只补全角色与声明，不修改密码
func (s *userService) SeedAdmin(ctx context.Context) error {
	email := util.NormalizeEmail(s.config.Security.AdminEmail)
	if email == "" {
		s.logger.Warn("security.admin-email is empty, admin seeding skipped")
		return nil
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if user == nil {
		if s.config.Security.AdminPassword == "" {
			s.logger.Warn("security.admin-password is empty, admin seeding skipped")
			return nil
		}
		password, err := util.GeneratePasswordHash(s.config.Security.AdminPassword)
		if err != nil {
			return err
		}
		user, err = s.userRepo.Create(ctx, &domain.User{
			Email:         email,
			Username:      seedUsername(email),
			Password:      password,
			EmailVerified: true,
			Roles:         []string{domain.RoleAdmin},
			Claims:        adminClaims,
		})
		if err != nil {
			return err
		}
		s.logger.Info("admin user seeded", zap.Int64(logger.FieldUID, user.UID))
		return nil
	}

	if err := s.userRepo.GrantRoles(ctx, user.UID, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.userRepo.GrantClaims(ctx, user.UID, adminClaims...); err != nil {
		return err
	}
	s.logger.Info("admin user grants ensured", zap.Int64(logger.FieldUID, user.UID))
	return nil
}

// seedUsername 由邮箱本地部分派生用户名
func seedUsername(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	var b strings.Builder
	for _, r := range local {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if len(name) < 3 {
		name = "admin"
	}
	if len(name) > 20 {
		name = name[:20]
	}
	return name
}
