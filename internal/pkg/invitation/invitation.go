package invitation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL 邀请链接有效期
const DefaultTTL = 24 * time.Hour

const keyPrefix = "invitation:"

// ErrInvalidToken 邀请码不存在、已过期或已被使用
var ErrInvalidToken = errors.New("invitation token is invalid or expired")

// Invitation 一条邀请
type Invitation struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Store interface {
	Create(ctx context.Context, email string) (*Invitation, error)
	Lookup(ctx context.Context, token string) (string, error)
	Consume(ctx context.Context, token string) (string, error)
}

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore 邀请码存放在 redis，key 为 invitation:<token>，值为受邀邮箱
func NewStore(rdb *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisStore{rdb: rdb, ttl: ttl}
}

func key(token string) string {
	return keyPrefix + token
}

// Create 生成随机邀请码并写入 redis
func (s *redisStore) Create(ctx context.Context, email string) (*Invitation, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	// SetNX 防止极小概率的 token 碰撞覆盖他人的邀请
	ok, err := s.rdb.SetNX(ctx, key(token), email, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("store invitation: %w", err)
	}
	if !ok {
		return nil, errors.New("invitation token collision")
	}

	return &Invitation{
		Token:     token,
		Email:     email,
		ExpiresAt: time.Now().Add(s.ttl),
	}, nil
}

// Lookup 只读取，不消耗
func (s *redisStore) Lookup(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	email, err := s.rdb.Get(ctx, key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("lookup invitation: %w", err)
	}
	return email, nil
}

// Consume 读取并删除，同一个邀请码只能使用一次
func (s *redisStore) Consume(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	email, err := s.rdb.GetDel(ctx, key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("consume invitation: %w", err)
	}
	return email, nil
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate invitation token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
