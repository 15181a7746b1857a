package service

import (
	"context"
	"errors"

	"threaded_comments/internal/domain/user/repository"
	"threaded_comments/internal/pkg/invitation"
	"threaded_comments/internal/pkg/mailer"
	"threaded_comments/internal/pkg/worker"
	"threaded_comments/pkg/apperror"
	"threaded_comments/pkg/logger"

	"go.uber.org/zap"
)

// InvitationResult 创建邀请的结果
type InvitationResult struct {
	*invitation.Invitation
	EmailQueued bool `json:"emailQueued"`
}

type InvitationService interface {
	Invite(ctx context.Context, inviterID, email string) (*InvitationResult, error)
	Validate(ctx context.Context, token string) (string, error)
}

type invitationService struct {
	users       repository.UserRepository
	store       invitation.Store
	mail        worker.Enqueuer
	frontendURL string
}

func NewInvitationService(users repository.UserRepository, store invitation.Store, mail worker.Enqueuer, frontendURL string) InvitationService {
	return &invitationService{users: users, store: store, mail: mail, frontendURL: frontendURL}
}

// Invite 生成邀请码并异步发送邀请邮件
// 邮件入队失败不影响邀请本身，邀请码照常返回
func (s *invitationService) Invite(ctx context.Context, inviterID, email string) (*InvitationResult, error) {
	email = normalizeEmail(email)

	inviter, err := s.users.GetByID(ctx, inviterID)
	if err != nil {
		return nil, apperror.Internal("load inviter", err)
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, "", email)
	if err != nil {
		return nil, apperror.Internal("check invited email", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	inv, err := s.store.Create(ctx, email)
	if err != nil {
		return nil, apperror.Internal("create invitation", err)
	}

	result := &InvitationResult{Invitation: inv}
	msg, err := mailer.InvitationMessage(s.frontendURL, inviter.Username, email, inv.Token, inv.ExpiresAt)
	if err != nil {
		return nil, apperror.Internal("render invitation", err)
	}
	if err := s.mail.AddTask(msg); err != nil {
		logger.Log.Warn("invitation mail not queued", zap.String("email", email), zap.Error(err))
		return result, nil
	}
	result.EmailQueued = true
	return result, nil
}

// Validate 校验邀请码，返回受邀邮箱，不消耗
func (s *invitationService) Validate(ctx context.Context, token string) (string, error) {
	email, err := s.store.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, invitation.ErrInvalidToken) {
			return "", ErrInvitationInvalid
		}
		return "", apperror.Internal("lookup invitation", err)
	}
	return email, nil
}
