package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"threaded_comments/internal/domain/user/model"
	"threaded_comments/internal/pkg/invitation"
	"threaded_comments/internal/pkg/mailer"
	"threaded_comments/internal/pkg/worker"
	"threaded_comments/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInvite(t *testing.T) {
	ctx := context.Background()
	inviter := &model.User{Username: "alice"}
	inviter.ID = "u1"
	inv := &invitation.Invitation{Token: "tok", Email: "bob@example.com", ExpiresAt: time.Now().Add(24 * time.Hour)}

	t.Run("Creates invitation and queues mail", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockInvitationStore)
		mockMail := new(MockEnqueuer)
		service := NewInvitationService(mockRepo, mockStore, mockMail, "http://front")

		mockRepo.On("GetByID", ctx, "u1").Return(inviter, nil)
		mockRepo.On("ExistsByUsernameOrEmail", ctx, "", "bob@example.com").Return(false, nil)
		mockStore.On("Create", ctx, "bob@example.com").Return(inv, nil)
		mockMail.On("AddTask", mock.MatchedBy(func(m mailer.Message) bool {
			return m.To == "bob@example.com" && strings.Contains(m.HTML, "http://front/invitation/tok")
		})).Return(nil)

		result, err := service.Invite(ctx, "u1", " Bob@Example.com")

		require.NoError(t, err)
		assert.Equal(t, "tok", result.Token)
		assert.True(t, result.EmailQueued)
		mockMail.AssertExpectations(t)
	})

	t.Run("Queue full still returns the invitation", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockInvitationStore)
		mockMail := new(MockEnqueuer)
		service := NewInvitationService(mockRepo, mockStore, mockMail, "http://front")

		mockRepo.On("GetByID", ctx, "u1").Return(inviter, nil)
		mockRepo.On("ExistsByUsernameOrEmail", ctx, "", "bob@example.com").Return(false, nil)
		mockStore.On("Create", ctx, "bob@example.com").Return(inv, nil)
		mockMail.On("AddTask", mock.Anything).Return(worker.ErrQueueFull)

		result, err := service.Invite(ctx, "u1", "bob@example.com")

		require.NoError(t, err)
		assert.False(t, result.EmailQueued)
	})

	t.Run("Already registered", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockInvitationStore)
		service := NewInvitationService(mockRepo, mockStore, new(MockEnqueuer), "http://front")

		mockRepo.On("GetByID", ctx, "u1").Return(inviter, nil)
		mockRepo.On("ExistsByUsernameOrEmail", ctx, "", "bob@example.com").Return(true, nil)

		_, err := service.Invite(ctx, "u1", "bob@example.com")

		assert.True(t, apperror.Is(err, apperror.KindConflict))
		mockStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestValidateInvitation(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockInvitationStore)
	service := NewInvitationService(new(MockUserRepository), mockStore, new(MockEnqueuer), "")

	mockStore.On("Lookup", ctx, "good").Return("bob@example.com", nil)
	mockStore.On("Lookup", ctx, "bad").Return("", invitation.ErrInvalidToken)

	email, err := service.Validate(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", email)

	_, err = service.Validate(ctx, "bad")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
