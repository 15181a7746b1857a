package service

import (
	"context"
	"time"

	"threaded_comments/internal/domain/user/model"
	"threaded_comments/pkg/cache"
)

// UserCacheTTL 用户资料缓存时间，用户名和邮箱注册后不可修改
const UserCacheTTL = time.Hour

// CachedUserService 带缓存的用户服务，只缓存 GetUser
type CachedUserService struct {
	UserService
	cache cache.CacheService
}

// NewCachedUserService 创建带缓存的用户服务
func NewCachedUserService(inner UserService, c cache.CacheService) UserService {
	return &CachedUserService{UserService: inner, cache: c}
}

// cachedUser 缓存中不保存密码哈希
type cachedUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *CachedUserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	cu, err := cache.GetOrLoad(ctx, s.cache, "user:"+id, UserCacheTTL, func(ctx context.Context) (cachedUser, error) {
		user, err := s.UserService.GetUser(ctx, id)
		if err != nil {
			return cachedUser{}, err
		}
		return cachedUser{ID: user.ID, Username: user.Username, Email: user.Email, CreatedAt: user.CreatedAt, UpdatedAt: user.UpdatedAt}, nil
	})
	if err != nil {
		return nil, err
	}

	user := &model.User{Username: cu.Username, Email: cu.Email}
	user.ID, user.CreatedAt, user.UpdatedAt = cu.ID, cu.CreatedAt, cu.UpdatedAt
	return user, nil
}
