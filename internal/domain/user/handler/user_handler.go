package handler

import (
	"net/http"

	"threaded_comments/internal/domain/user/service"
	"threaded_comments/internal/pkg/middleware"
	"threaded_comments/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service     service.UserService
	invitations service.InvitationService
}

// NewUserHandler 创建处理器
func NewUserHandler(s service.UserService, invitations service.InvitationService) *UserHandler {
	return &UserHandler{service: s, invitations: invitations}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	InvitationToken string `json:"invitationToken"`
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// InviteInput 邀请输入
type InviteInput struct {
	Email string `json:"email" binding:"required,email"`
}

// Register 处理注册请求
// @Summary 注册
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body RegisterInput true "注册信息"
// @Success 201 {object} response.Response{data=service.AuthResult}
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Register(c.Request.Context(), service.RegisterInput{
		Username:        input.Username,
		Email:           input.Email,
		Password:        input.Password,
		InvitationToken: input.InvitationToken,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, result)
}

// Login 处理登录请求
// @Summary 登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body LoginInput true "邮箱和密码"
// @Success 200 {object} response.Response{data=service.AuthResult}
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// Me 当前登录用户
// @Summary 当前用户
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response{data=model.User}
// @Router /auth/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, user)
}

// Invite 邀请新用户
// @Summary 发送邀请邮件
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body InviteInput true "受邀邮箱"
// @Success 201 {object} response.Response{data=service.InvitationResult}
// @Router /auth/invitations [post]
func (h *UserHandler) Invite(c *gin.Context) {
	var input InviteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.invitations.Invite(c.Request.Context(), userID, input.Email)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, result)
}

// CheckInvitation 校验邀请码
// @Summary 校验邀请码
// @Tags Auth
// @Produce json
// @Param token path string true "邀请码"
// @Success 200 {object} response.Response{data=map[string]string}
// @Failure 404 {object} response.Response
// @Router /auth/invitation/{token} [get]
func (h *UserHandler) CheckInvitation(c *gin.Context) {
	email, err := h.invitations.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"email": email})
}
