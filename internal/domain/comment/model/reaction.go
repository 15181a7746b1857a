package model

import "time"

// ReactionType like 或 dislike
type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

// Valid 只接受 like / dislike
func (t ReactionType) Valid() bool {
	return t == ReactionLike || t == ReactionDislike
}

// Reaction 用户对评论的态度，(comment_id, user_id) 为联合主键
type Reaction struct {
	CommentID    string       `gorm:"primaryKey;type:uuid" json:"commentId"`
	UserID       string       `gorm:"primaryKey;type:uuid" json:"userId"`
	ReactionType ReactionType `gorm:"type:varchar(10);not null" json:"reactionType"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (Reaction) TableName() string {
	return "comment_reactions"
}

// Counts 点赞/点踩数
type Counts struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

// Add 按类型累加
func (c *Counts) Add(t ReactionType, n int64) {
	switch t {
	case ReactionLike:
		c.Likes += n
	case ReactionDislike:
		c.Dislikes += n
	}
}

// Transition 单次点击后的状态变化
type Transition struct {
	Next  *ReactionType // nil 表示取消
	Delta Counts
}

// Toggle 客户端点击 like/dislike 的状态机:
// 无 -> 新建；同类型 -> 取消；不同类型 -> 切换
func Toggle(current *ReactionType, action ReactionType) Transition {
	var delta Counts
	if current == nil {
		next := action
		delta.Add(action, 1)
		return Transition{Next: &next, Delta: delta}
	}

	delta.Add(*current, -1)
	if *current == action {
		return Transition{Next: nil, Delta: delta}
	}

	next := action
	delta.Add(action, 1)
	return Transition{Next: &next, Delta: delta}
}
