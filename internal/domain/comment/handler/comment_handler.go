package handler

import (
	"net/http"
	"strconv"

	"threaded_comments/internal/domain/comment/model"
	"threaded_comments/internal/domain/comment/service"
	"threaded_comments/internal/pkg/middleware"
	"threaded_comments/pkg/metrics"
	"threaded_comments/pkg/response"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments  service.CommentService
	reactions service.ReactionService
	metrics   *metrics.MetricsCollector
}

func NewCommentHandler(comments service.CommentService, reactions service.ReactionService, collector *metrics.MetricsCollector) *CommentHandler {
	return &CommentHandler{comments: comments, reactions: reactions, metrics: collector}
}

// CreateInput 发表评论输入，parentId 和 parent_id 都接受
type CreateInput struct {
	Content       string  `json:"content"`
	ParentID      *string `json:"parentId"`
	ParentIDSnake *string `json:"parent_id"`
}

func (in CreateInput) parent() *string {
	if in.ParentID != nil {
		return in.ParentID
	}
	return in.ParentIDSnake
}

// UpdateInput 编辑评论输入
type UpdateInput struct {
	Content string `json:"content"`
}

// ReactionInput 点赞/点踩输入
type ReactionInput struct {
	ReactionType string `json:"reactionType" binding:"required"`
}

// ListComments 分页获取根评论及一层回复
// @Summary 评论列表
// @Tags Comment
// @Produce json
// @Param page query int false "页码，默认 1"
// @Param limit query int false "每页条数，默认 10，最大 100"
// @Param sort query string false "newest | most_liked | most_disliked"
// @Success 200 {object} response.Response{data=model.ThreadPage}
// @Router /comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	// 参数逐个解析，某一个非法不影响其余参数
	page, err := h.comments.ListThreads(c.Request.Context(), queryInt(c, "page"), queryInt(c, "limit"), c.Query("sort"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, page)
}

// queryInt 缺省或非法返回 0，由分页默认值兜底
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// CreateComment 发表评论或回复
// @Summary 发表评论
// @Tags Comment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body CreateInput true "评论内容"
// @Success 201 {object} response.Response{data=model.CommentView}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var input CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	view, err := h.comments.CreateComment(c.Request.Context(), userID, input.Content, input.parent())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	h.metrics.RecordComment("create")
	response.Created(c, view)
}

// UpdateComment 编辑自己的评论
// @Summary 编辑评论
// @Tags Comment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "评论ID"
// @Param input body UpdateInput true "新内容"
// @Success 200 {object} response.Response{data=model.CommentView}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /comments/{id} [put]
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	var input UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	view, err := h.comments.UpdateComment(c.Request.Context(), c.Param("id"), userID, input.Content)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	h.metrics.RecordComment("update")
	response.Success(c, view)
}

// DeleteComment 删除自己的评论及其所有回复
// @Summary 删除评论
// @Tags Comment
// @Security BearerAuth
// @Produce json
// @Param id path string true "评论ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	if err := h.comments.DeleteComment(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.HandleError(c, err)
		return
	}
	h.metrics.RecordComment("delete")
	response.Success(c, gin.H{"message": "Comment deleted successfully"})
}

// SetReaction 设置 like / dislike
// @Summary 设置 reaction
// @Tags Reaction
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "评论ID"
// @Param input body ReactionInput true "like 或 dislike"
// @Success 200 {object} response.Response{data=service.ReactionResult}
// @Router /comments/{id}/reaction [post]
func (h *CommentHandler) SetReaction(c *gin.Context) {
	var input ReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidReaction, "Invalid reaction type")
		return
	}

	userID, _ := middleware.GetUserID(c)
	rt := model.ReactionType(input.ReactionType)
	result, err := h.reactions.SetReaction(c.Request.Context(), c.Param("id"), userID, rt)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	h.metrics.RecordReaction("set", string(rt))
	response.Success(c, result)
}

// ToggleReaction 点击切换：同类型取消，不同类型切换
// @Summary 切换 reaction
// @Tags Reaction
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "评论ID"
// @Param input body ReactionInput true "like 或 dislike"
// @Success 200 {object} response.Response{data=service.ToggleResult}
// @Router /comments/{id}/reaction/toggle [post]
func (h *CommentHandler) ToggleReaction(c *gin.Context) {
	var input ReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidReaction, "Invalid reaction type")
		return
	}

	userID, _ := middleware.GetUserID(c)
	rt := model.ReactionType(input.ReactionType)
	result, err := h.reactions.ToggleReaction(c.Request.Context(), c.Param("id"), userID, rt)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	h.metrics.RecordReaction("toggle", string(rt))
	response.Success(c, result)
}

// RemoveReaction 取消 reaction，没有时也返回成功
// @Summary 取消 reaction
// @Tags Reaction
// @Security BearerAuth
// @Produce json
// @Param id path string true "评论ID"
// @Success 200 {object} response.Response{data=model.Counts}
// @Router /comments/{id}/reaction [delete]
func (h *CommentHandler) RemoveReaction(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	counts, err := h.reactions.RemoveReaction(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	h.metrics.RecordReaction("remove", "")
	response.Success(c, counts)
}

// GetUserReaction 当前用户对评论的 reaction
// @Summary 我的 reaction
// @Tags Reaction
// @Security BearerAuth
// @Produce json
// @Param id path string true "评论ID"
// @Success 200 {object} response.Response{data=map[string]string}
// @Router /comments/{id}/reaction [get]
func (h *CommentHandler) GetUserReaction(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	rt, err := h.reactions.GetUserReaction(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"reactionType": rt})
}
