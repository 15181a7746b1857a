package response

import (
	"net/http"

	"threaded_comments/pkg/apperror"
	"threaded_comments/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应 (HTTP 201)
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// HandleError 按错误分类写出响应
// internal 错误只记录日志，客户端只拿到通用提示
func HandleError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		fields := []zap.Field{
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		}
		if id, ok := c.Get("RequestID"); ok {
			fields = append(fields, zap.Any("request_id", id))
		}
		logger.Log.Error("request failed", fields...)
		Error(c, http.StatusInternalServerError, ErrServerInternal, "Internal server error")
		return
	}

	status, code := statusFor(kind)
	if custom := apperror.CodeOf(err); custom != 0 {
		code = custom
	}
	Error(c, status, code, apperror.MessageOf(err))
}

func statusFor(kind apperror.Kind) (int, int) {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest, ErrInvalidParam
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized, ErrAuthFailed
	case apperror.KindForbidden:
		return http.StatusForbidden, ErrNoPermission
	case apperror.KindNotFound:
		return http.StatusNotFound, CodeError
	case apperror.KindConflict:
		return http.StatusConflict, CodeError
	default:
		return http.StatusInternalServerError, ErrServerInternal
	}
}
