package controller

import (
	"code4u_backend/internal/model"
	"code4u_backend/internal/service"
	"code4u_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type JourneyController struct {
	JourneyService *service.JourneyService
}

func NewJourneyController(journeyService *service.JourneyService) *JourneyController {
	return &JourneyController{JourneyService: journeyService}
}

// GetJourneys godoc
// @Summary 旅程总览
// @Description 返回全部旅程以及可开始、进行中、已完成三个分组；未登录时只返回没有前置要求的旅程
// @Tags 旅程
// @Produce json
// @Success 200 {object} util.Response{data=service.JourneyOverview}
// @Router /api/journeys [get]
func (c *JourneyController) GetJourneys(ctx *gin.Context) {
	overview, err := c.JourneyService.Overview(ctx.Request.Context(), util.GetUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// GetJourney godoc
// @Summary 旅程详情
// @Tags 旅程
// @Produce json
// @Param id path string true "旅程ID"
// @Success 200 {object} util.Response{data=service.JourneyDetails}
// @Failure 404 {object} util.Response
// @Router /api/journeys/{id} [get]
func (c *JourneyController) GetJourney(ctx *gin.Context) {
	details, err := c.JourneyService.FetchJourneyDetails(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, details)
}

// GetProgress godoc
// @Summary 我的旅程进度
// @Description 先同步已完成关卡再返回进度
// @Tags 旅程
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=map[string]model.JourneyProgress}
// @Router /api/journeys/progress [get]
func (c *JourneyController) GetProgress(ctx *gin.Context) {
	progress, err := c.JourneyService.RefreshJourneyProgress(ctx.Request.Context(), util.GetUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// StartJourney godoc
// @Summary 开始旅程
// @Tags 旅程
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "旅程ID"
// @Success 200 {object} util.Response{data=model.JourneyProgress}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "前置旅程未完成"
// @Router /api/journeys/{id}/start [post]
func (c *JourneyController) StartJourney(ctx *gin.Context) {
	progress, err := c.JourneyService.StartJourney(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// CompleteLevel godoc
// @Summary 在旅程中完成关卡
// @Description 把已通关的关卡计入旅程，覆盖全部关卡时自动完成旅程
// @Tags 旅程
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "旅程ID"
// @Param levelId path string true "关卡ID"
// @Success 200 {object} util.Response{data=model.JourneyProgress}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/journeys/{id}/levels/{levelId}/complete [post]
func (c *JourneyController) CompleteLevel(ctx *gin.Context) {
	progress, err := c.JourneyService.CompleteLevelInJourney(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("id"), ctx.Param("levelId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// Sync godoc
// @Summary 同步已完成关卡到旅程进度
// @Tags 旅程
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/journeys/sync [post]
func (c *JourneyController) Sync(ctx *gin.Context) {
	changed, err := c.JourneyService.SynchronizeCompletedLevels(ctx.Request.Context(), util.GetUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"updated": changed})
}

// SaveJourney godoc
// @Summary 创建或更新旅程
// @Tags 创作者
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.Journey true "旅程"
// @Success 200 {object} util.Response{data=model.Journey}
// @Failure 400 {object} util.Response
// @Router /api/creator/journeys [post]
func (c *JourneyController) SaveJourney(ctx *gin.Context) {
	var journey model.Journey
	if err := ctx.ShouldBindJSON(&journey); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if id := ctx.Param("id"); id != "" {
		journey.ID = id
	}
	if journey.ID == "" || journey.Title == "" {
		util.BadRequest(ctx, "id and title are required")
		return
	}

	if err := c.JourneyService.SaveJourney(ctx.Request.Context(), &journey); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, journey)
}

// DeleteJourney godoc
// @Summary 删除旅程
// @Tags 创作者
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "旅程ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/creator/journeys/{id} [delete]
func (c *JourneyController) DeleteJourney(ctx *gin.Context) {
	if err := c.JourneyService.DeleteJourney(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SyncAll godoc
// @Summary 为全部用户同步旅程进度
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/journeys/sync [post]
func (c *JourneyController) SyncAll(ctx *gin.Context) {
	updated, err := c.JourneyService.SyncAllUsers(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"updatedUsers": updated})
}
