package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"threaded_comments/pkg/apperror"
	"threaded_comments/pkg/response"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxContentLength = 5000

var (
	ErrCommentNotFound = apperror.NotFound("Comment not found").WithCode(response.ErrCommentNotFound)
	ErrParentNotFound  = apperror.NotFound("Parent comment not found").WithCode(response.ErrCommentNotFound)
	ErrNotCommentOwner = apperror.Forbidden("Not authorized to modify this comment").WithCode(response.ErrCommentForbidden)
	ErrContentRequired = apperror.Validation("Comment content is required")
	ErrContentTooLong  = apperror.Validation("Comment content is too long")
	ErrInvalidReaction = apperror.Validation("Invalid reaction type").WithCode(response.ErrInvalidReaction)
	// token 合法但用户已不存在，user_id 外键失败
	ErrUnknownUser = apperror.Unauthorized("User account no longer exists").WithCode(response.ErrAuthFailed)
)

// normalizeContent 去掉首尾空白并校验长度
func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrContentRequired
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return "", ErrContentTooLong
	}
	return content, nil
}

// validID 评论主键是 uuid，非法格式直接视为不存在，避免打到数据库报类型错误
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isForeignKeyViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated)
}
