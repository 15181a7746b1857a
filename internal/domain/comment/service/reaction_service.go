package service

import (
	"context"

	"threaded_comments/internal/domain/comment/model"
	"threaded_comments/internal/domain/comment/repository"
	"threaded_comments/pkg/apperror"
)

// ReactionResult 设置 reaction 后的结果
type ReactionResult struct {
	Reaction *model.Reaction `json:"reaction"`
	model.Counts
}

// ToggleResult 点击切换后的结果，ReactionType 为 nil 表示已取消
type ToggleResult struct {
	ReactionType *model.ReactionType `json:"reactionType"`
	model.Counts
}

type ReactionService interface {
	SetReaction(ctx context.Context, commentID, userID string, reactionType model.ReactionType) (*ReactionResult, error)
	ToggleReaction(ctx context.Context, commentID, userID string, action model.ReactionType) (*ToggleResult, error)
	RemoveReaction(ctx context.Context, commentID, userID string) (model.Counts, error)
	GetUserReaction(ctx context.Context, commentID, userID string) (*model.ReactionType, error)
	CountsFor(ctx context.Context, commentID string) (model.Counts, error)
}

type reactionService struct {
	comments  repository.CommentRepository
	reactions repository.ReactionRepository
}

func NewReactionService(comments repository.CommentRepository, reactions repository.ReactionRepository) ReactionService {
	return &reactionService{comments: comments, reactions: reactions}
}

// SetReaction 新建或覆盖当前用户的 reaction，同类型重复设置不改变计数
func (s *reactionService) SetReaction(ctx context.Context, commentID, userID string, reactionType model.ReactionType) (*ReactionResult, error) {
	if !reactionType.Valid() {
		return nil, ErrInvalidReaction
	}
	if err := s.ensureComment(ctx, commentID); err != nil {
		return nil, err
	}

	reaction := &model.Reaction{
		CommentID:    commentID,
		UserID:       userID,
		ReactionType: reactionType,
	}
	if err := s.upsert(ctx, reaction); err != nil {
		return nil, err
	}

	counts, err := s.CountsFor(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return &ReactionResult{Reaction: reaction, Counts: counts}, nil
}

// ToggleReaction 服务端版本的点击状态机：同类型取消，不同类型切换，没有则新建
func (s *reactionService) ToggleReaction(ctx context.Context, commentID, userID string, action model.ReactionType) (*ToggleResult, error) {
	if !action.Valid() {
		return nil, ErrInvalidReaction
	}
	if err := s.ensureComment(ctx, commentID); err != nil {
		return nil, err
	}

	current, err := s.GetUserReaction(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}

	tr := model.Toggle(current, action)
	if tr.Next == nil {
		if _, err := s.reactions.Delete(ctx, commentID, userID); err != nil {
			return nil, apperror.Internal("delete reaction", err)
		}
	} else {
		reaction := &model.Reaction{CommentID: commentID, UserID: userID, ReactionType: *tr.Next}
		if err := s.upsert(ctx, reaction); err != nil {
			return nil, err
		}
	}

	counts, err := s.CountsFor(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{ReactionType: tr.Next, Counts: counts}, nil
}

// RemoveReaction 幂等：没有 reaction 时直接返回当前计数
func (s *reactionService) RemoveReaction(ctx context.Context, commentID, userID string) (model.Counts, error) {
	if err := s.ensureComment(ctx, commentID); err != nil {
		return model.Counts{}, err
	}

	if _, err := s.reactions.Delete(ctx, commentID, userID); err != nil {
		return model.Counts{}, apperror.Internal("delete reaction", err)
	}
	return s.CountsFor(ctx, commentID)
}

// GetUserReaction 没有 reaction 时返回 nil，不报错
func (s *reactionService) GetUserReaction(ctx context.Context, commentID, userID string) (*model.ReactionType, error) {
	if !validID(commentID) {
		return nil, nil
	}

	reaction, err := s.reactions.Get(ctx, commentID, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, apperror.Internal("get reaction", err)
	}
	t := reaction.ReactionType
	return &t, nil
}

// CountsFor 每次都实时统计
func (s *reactionService) CountsFor(ctx context.Context, commentID string) (model.Counts, error) {
	counts, err := s.reactions.CountByComments(ctx, []string{commentID})
	if err != nil {
		return model.Counts{}, apperror.Internal("count reactions", err)
	}
	return counts[commentID], nil
}

func (s *reactionService) ensureComment(ctx context.Context, commentID string) error {
	if !validID(commentID) {
		return ErrCommentNotFound
	}
	exists, err := s.comments.Exists(ctx, commentID)
	if err != nil {
		return apperror.Internal("check comment", err)
	}
	if !exists {
		return ErrCommentNotFound
	}
	return nil
}

func (s *reactionService) upsert(ctx context.Context, reaction *model.Reaction) error {
	if err := s.reactions.Upsert(ctx, reaction); err != nil {
		if isForeignKeyViolation(err) {
			// 评论在检查之后被删除，否则是 user_id 外键失败
			if cerr := s.ensureComment(ctx, reaction.CommentID); cerr != nil {
				return cerr
			}
			return ErrUnknownUser
		}
		return apperror.Internal("upsert reaction", err)
	}
	return nil
}
