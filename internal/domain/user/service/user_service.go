package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"threaded_comments/internal/domain/user/model"
	"threaded_comments/internal/domain/user/repository"
	"threaded_comments/internal/pkg/invitation"
	"threaded_comments/pkg/apperror"
	"threaded_comments/pkg/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterInput 注册参数
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	InvitationToken string
}

// AuthResult 登录/注册结果
type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// UserService 用户服务接口
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// userService 实现
type userService struct {
	repo        repository.UserRepository
	invitations invitation.Store
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository, invitations invitation.Store) UserService {
	return &userService{repo: repo, invitations: invitations}
}

// Register 注册并直接签发 token
// 携带邀请码时，邀请邮箱必须与注册邮箱一致，查重通过后才消耗邀请码
func (s *userService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return nil, ErrInvalidUsername
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if input.InvitationToken != "" {
		invited, err := s.lookupInvitation(ctx, input.InvitationToken)
		if err != nil {
			return nil, err
		}
		if invited != email {
			return nil, ErrInvitationEmail
		}
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, apperror.Internal("check existing user", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	if input.InvitationToken != "" {
		// GETDEL 原子消耗，并发注册只有一个能拿到
		if _, err := s.invitations.Consume(ctx, input.InvitationToken); err != nil {
			if errors.Is(err, invitation.ErrInvalidToken) {
				return nil, ErrInvitationInvalid
			}
			return nil, apperror.Internal("consume invitation", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("hash password", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 查重和插入之间被抢注
			return nil, ErrUserExists
		}
		return nil, apperror.Internal("create user", err)
	}

	return s.issue(user)
}

// Login 邮箱 + 密码登录，用户不存在和密码错误返回同一个错误
func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperror.Internal("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// GetUser 获取单个用户
func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperror.Internal("get user", err)
	}
	return user, nil
}

func (s *userService) lookupInvitation(ctx context.Context, token string) (string, error) {
	email, err := s.invitations.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, invitation.ErrInvalidToken) {
			return "", ErrInvitationInvalid
		}
		return "", apperror.Internal("lookup invitation", err)
	}
	return email, nil
}

func (s *userService) issue(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := utils.GenerateToken(user.ID)
	if err != nil {
		return nil, apperror.Internal("generate token", err)
	}
	return &AuthResult{Token: token, ExpiresAt: *expiresAt, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
