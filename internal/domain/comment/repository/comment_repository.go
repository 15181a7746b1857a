package repository

import (
	"context"

	"threaded_comments/internal/domain/comment/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListRoots(ctx context.Context, sort model.Sort, offset, limit int) ([]model.Comment, int64, error)
	ListReplies(ctx context.Context, parentIDs []string) ([]model.Comment, error)
	UpdateContent(ctx context.Context, id, userID, content string) (bool, error)
	DeleteTree(ctx context.Context, id, userID string) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListRoots 分页获取根评论
// most_liked / most_disliked 通过对 comment_reactions 的聚合子查询排序，计数相同时按时间倒序
func (r *commentRepository) ListRoots(ctx context.Context, sort model.Sort, offset, limit int) ([]model.Comment, int64, error) {
	var comments []model.Comment
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Comment{}).Where("parent_id IS NULL").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := db.Model(&model.Comment{}).Where("comments.parent_id IS NULL")
	switch sort {
	case model.SortMostLiked, model.SortMostDisliked:
		reactionType := model.ReactionLike
		if sort == model.SortMostDisliked {
			reactionType = model.ReactionDislike
		}
		query = query.
			Select("comments.*").
			Joins(`LEFT JOIN (SELECT comment_id, COUNT(*) AS cnt FROM comment_reactions WHERE reaction_type = ? GROUP BY comment_id) rc ON rc.comment_id = comments.id`, reactionType).
			Order("COALESCE(rc.cnt, 0) DESC").
			Order("comments.created_at DESC")
	default:
		query = query.Order("comments.created_at DESC")
	}

	if err := query.Preload("User").Offset(offset).Limit(limit).Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// ListReplies 获取一层回复，按时间正序
func (r *commentRepository) ListReplies(ctx context.Context, parentIDs []string) ([]model.Comment, error) {
	if len(parentIDs) == 0 {
		return []model.Comment{}, nil
	}

	var replies []model.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("parent_id IN ?", parentIDs).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

// UpdateContent 条件更新，只有作者本人的评论会被修改
// 返回 false 表示没有匹配 (id, user_id) 的行
func (r *commentRepository) UpdateContent(ctx context.Context, id, userID, content string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("content", content)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

const subtreeQuery = `
WITH RECURSIVE tree AS (
	SELECT id FROM comments WHERE id = ? AND user_id = ?
	UNION ALL
	SELECT c.id FROM comments c JOIN tree t ON c.parent_id = t.id
)
SELECT id FROM tree`

// DeleteTree 在一个事务里删除作者本人的评论、所有后代回复及其 reactions
// 返回删除的评论数，0 表示没有匹配 (id, user_id) 的根
func (r *commentRepository) DeleteTree(ctx context.Context, id, userID string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Raw(subtreeQuery, id, userID).Scan(&ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("comment_id IN ?", ids).Delete(&model.Reaction{}).Error; err != nil {
			return err
		}

		// 并发插入的新回复由外键 ON DELETE CASCADE 兜底
		result := tx.Where("id IN ?", ids).Delete(&model.Comment{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
