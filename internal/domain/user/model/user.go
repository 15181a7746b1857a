package model

import baseModel "threaded_comments/pkg/model"

// User 用户模型
type User struct {
	baseModel.BaseModel
	Username     string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"` // 密码不返回给前端
}

func (User) TableName() string {
	return "users"
}
