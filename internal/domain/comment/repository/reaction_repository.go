package repository

import (
	"context"

	"threaded_comments/internal/domain/comment/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReactionRepository interface {
	Upsert(ctx context.Context, reaction *model.Reaction) error
	Delete(ctx context.Context, commentID, userID string) (bool, error)
	Get(ctx context.Context, commentID, userID string) (*model.Reaction, error)
	CountByComments(ctx context.Context, commentIDs []string) (map[string]model.Counts, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Upsert 以 (comment_id, user_id) 为冲突键插入或覆盖
func (r *reactionRepository) Upsert(ctx context.Context, reaction *model.Reaction) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "comment_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reaction_type", "updated_at"}),
	}).Create(reaction).Error
}

func (r *reactionRepository) Delete(ctx context.Context, commentID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Delete(&model.Reaction{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *reactionRepository) Get(ctx context.Context, commentID, userID string) (*model.Reaction, error) {
	var reaction model.Reaction
	err := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

type countRow struct {
	CommentID    string
	ReactionType model.ReactionType
	Total        int64
}

// CountByComments 一次 GROUP BY 统计多条评论的点赞/点踩数
// 没有任何 reaction 的评论也会出现在结果里，计数为 0
func (r *reactionRepository) CountByComments(ctx context.Context, commentIDs []string) (map[string]model.Counts, error) {
	counts := make(map[string]model.Counts, len(commentIDs))
	if len(commentIDs) == 0 {
		return counts, nil
	}

	var rows []countRow
	err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Select("comment_id, reaction_type, COUNT(*) AS total").
		Where("comment_id IN ?", commentIDs).
		Group("comment_id, reaction_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, id := range commentIDs {
		counts[id] = model.Counts{}
	}
	for _, row := range rows {
		c := counts[row.CommentID]
		c.Add(row.ReactionType, row.Total)
		counts[row.CommentID] = c
	}
	return counts, nil
}
