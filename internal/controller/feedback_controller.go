package controller

import (
	"code4u_backend/internal/model"
	"code4u_backend/internal/service"
	"code4u_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type FeedbackController struct {
	FeedbackService *service.FeedbackService
}

func NewFeedbackController(feedbackService *service.FeedbackService) *FeedbackController {
	return &FeedbackController{FeedbackService: feedbackService}
}

// swagger:model FeedbackRequest
type FeedbackRequest struct {
	LevelID    string `json:"levelId"`
	Category   string `json:"category"`
	Rating     int    `json:"rating"`
	Message    string `json:"message"`
	AutoPrompt bool   `json:"autoPrompt"`
}

// Submit godoc
// @Summary 提交反馈
// @Tags 反馈
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body FeedbackRequest true "反馈内容"
// @Success 201 {object} util.Response{data=model.Feedback}
// @Failure 400 {object} util.Response
// @Router /api/feedback [post]
func (c *FeedbackController) Submit(ctx *gin.Context) {
	var req FeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	feedback := &model.Feedback{
		UserID:     util.GetUserID(ctx),
		LevelID:    req.LevelID,
		Category:   req.Category,
		Rating:     req.Rating,
		Message:    req.Message,
		AutoPrompt: req.AutoPrompt,
	}
	if err := c.FeedbackService.Submit(ctx.Request.Context(), feedback); err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, feedback)
}

// List godoc
// @Summary 反馈列表
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/feedback [get]
func (c *FeedbackController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	items, total, err := c.FeedbackService.List(ctx.Request.Context(), page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"items": items,
		"total": total,
		"page":  page,
	})
}

// Get godoc
// @Summary 反馈详情
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "反馈ID"
// @Success 200 {object} util.Response{data=model.Feedback}
// @Failure 404 {object} util.Response
// @Router /api/admin/feedback/{id} [get]
func (c *FeedbackController) Get(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	feedback, err := c.FeedbackService.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, feedback)
}
