package model

import (
	baseModel "threaded_comments/pkg/model"
)

// Sort 根评论排序方式
type Sort string

const (
	SortNewest       Sort = "newest"
	SortMostLiked    Sort = "most_liked"
	SortMostDisliked Sort = "most_disliked"
)

// ParseSort 未知取值回落到 newest
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortMostLiked, SortMostDisliked:
		return Sort(s)
	default:
		return SortNewest
	}
}

// Author 评论作者，只暴露用户名
type Author struct {
	ID       string `json:"-"`
	Username string `json:"username"`
}

func (Author) TableName() string {
	return "users"
}

// Comment 评论模型，ParentID 为空表示根评论
type Comment struct {
	baseModel.BaseModel
	Content  string  `gorm:"type:text;not null" json:"content"`
	UserID   string  `gorm:"type:uuid;not null;index" json:"userId"`
	ParentID *string `gorm:"type:uuid;index" json:"parentId"`

	// 关联
	User Author `gorm:"foreignKey:UserID" json:"user"`
}

// IsRoot 是否为根评论
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// CommentView 带统计和回复的展示结构
type CommentView struct {
	Comment
	Likes    int64         `json:"likes"`
	Dislikes int64         `json:"dislikes"`
	Replies  []CommentView `json:"replies"`
}

// NewCommentView 拼装展示结构
func NewCommentView(c Comment, counts Counts) CommentView {
	return CommentView{
		Comment:  c,
		Likes:    counts.Likes,
		Dislikes: counts.Dislikes,
		Replies:  []CommentView{},
	}
}

// ThreadPage 一页根评论
type ThreadPage struct {
	Comments    []CommentView `json:"comments"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}
