package service

import (
	"context"

	"threaded_comments/internal/domain/comment/model"
	"threaded_comments/internal/domain/comment/repository"
	"threaded_comments/pkg/apperror"
	"threaded_comments/pkg/utils"
)

type CommentService interface {
	ListThreads(ctx context.Context, page, limit int, sort string) (*model.ThreadPage, error)
	CreateComment(ctx context.Context, userID, content string, parentID *string) (*model.CommentView, error)
	UpdateComment(ctx context.Context, id, userID, content string) (*model.CommentView, error)
	DeleteComment(ctx context.Context, id, userID string) error
}

type commentService struct {
	comments  repository.CommentRepository
	reactions repository.ReactionRepository
}

func NewCommentService(comments repository.CommentRepository, reactions repository.ReactionRepository) CommentService {
	return &commentService{comments: comments, reactions: reactions}
}

// ListThreads 一页根评论 + 一层回复 + 点赞/点踩统计
// 固定三次查询：根评论、回复、统计，与页大小无关
func (s *commentService) ListThreads(ctx context.Context, page, limit int, sort string) (*model.ThreadPage, error) {
	p := utils.Pagination{Page: page, Limit: limit}
	offset, limit := p.GetPageOffset()

	roots, total, err := s.comments.ListRoots(ctx, model.ParseSort(sort), offset, limit)
	if err != nil {
		return nil, apperror.Internal("list root comments", err)
	}

	rootIDs := make([]string, 0, len(roots))
	for _, c := range roots {
		rootIDs = append(rootIDs, c.ID)
	}

	replies, err := s.comments.ListReplies(ctx, rootIDs)
	if err != nil {
		return nil, apperror.Internal("list replies", err)
	}

	ids := rootIDs
	for _, r := range replies {
		ids = append(ids, r.ID)
	}
	counts, err := s.reactions.CountByComments(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("count reactions", err)
	}

	return &model.ThreadPage{
		Comments:    assembleThreads(roots, replies, counts),
		TotalPages:  utils.TotalPages(total, limit),
		CurrentPage: p.Page,
	}, nil
}

// assembleThreads 按 parent_id 分组，把回复挂到根评论下，保持各自的查询顺序
func assembleThreads(roots, replies []model.Comment, counts map[string]model.Counts) []model.CommentView {
	byParent := make(map[string][]model.CommentView, len(roots))
	for _, r := range replies {
		if r.ParentID == nil {
			continue
		}
		byParent[*r.ParentID] = append(byParent[*r.ParentID], model.NewCommentView(r, counts[r.ID]))
	}

	views := make([]model.CommentView, 0, len(roots))
	for _, c := range roots {
		v := model.NewCommentView(c, counts[c.ID])
		if children, ok := byParent[c.ID]; ok {
			v.Replies = children
		}
		views = append(views, v)
	}
	return views
}

func (s *commentService) CreateComment(ctx context.Context, userID, content string, parentID *string) (*model.CommentView, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}

	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	if parentID != nil {
		if !validID(*parentID) {
			return nil, ErrParentNotFound
		}
		exists, err := s.comments.Exists(ctx, *parentID)
		if err != nil {
			return nil, apperror.Internal("check parent comment", err)
		}
		if !exists {
			return nil, ErrParentNotFound
		}
	}

	comment := &model.Comment{
		Content:  content,
		UserID:   userID,
		ParentID: parentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		if isForeignKeyViolation(err) {
			return nil, s.explainForeignKey(ctx, parentID)
		}
		return nil, apperror.Internal("create comment", err)
	}

	created, err := s.comments.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, apperror.Internal("reload comment", err)
	}

	view := model.NewCommentView(*created, model.Counts{})
	return &view, nil
}

// UpdateComment 所有权校验和写入是同一条条件 UPDATE
// 没有命中时再读一次，区分不存在和无权限
func (s *commentService) UpdateComment(ctx context.Context, id, userID, content string) (*model.CommentView, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, ErrCommentNotFound
	}

	updated, err := s.comments.UpdateContent(ctx, id, userID, content)
	if err != nil {
		return nil, apperror.Internal("update comment", err)
	}
	if !updated {
		return nil, s.explainMiss(ctx, id)
	}

	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, apperror.Internal("reload comment", err)
	}

	counts, err := s.reactions.CountByComments(ctx, []string{id})
	if err != nil {
		return nil, apperror.Internal("count reactions", err)
	}

	view := model.NewCommentView(*comment, counts[id])
	return &view, nil
}

// DeleteComment 级联删除所有后代回复和它们的 reactions
func (s *commentService) DeleteComment(ctx context.Context, id, userID string) error {
	if !validID(id) {
		return ErrCommentNotFound
	}

	deleted, err := s.comments.DeleteTree(ctx, id, userID)
	if err != nil {
		return apperror.Internal("delete comment", err)
	}
	if deleted == 0 {
		return s.explainMiss(ctx, id)
	}
	return nil
}

// explainForeignKey 外键失败时区分父评论被并发删除和作者不存在
func (s *commentService) explainForeignKey(ctx context.Context, parentID *string) error {
	if parentID != nil {
		exists, err := s.comments.Exists(ctx, *parentID)
		if err != nil {
			return apperror.Internal("check parent comment", err)
		}
		if !exists {
			return ErrParentNotFound
		}
	}
	return ErrUnknownUser
}

func (s *commentService) explainMiss(ctx context.Context, id string) error {
	exists, err := s.comments.Exists(ctx, id)
	if err != nil {
		return apperror.Internal("check comment", err)
	}
	if !exists {
		return ErrCommentNotFound
	}
	return ErrNotCommentOwner
}
