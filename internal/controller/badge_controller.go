package controller

import (
	"code4u_backend/internal/model"
	"code4u_backend/internal/service"
	"code4u_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type BadgeController struct {
	BadgeService *service.BadgeService
}

func NewBadgeController(badgeService *service.BadgeService) *BadgeController {
	return &BadgeController{BadgeService: badgeService}
}

// ListBadges godoc
// @Summary 徽章目录
// @Tags 徽章
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Badge}
// @Router /api/badges [get]
func (c *BadgeController) ListBadges(ctx *gin.Context) {
	badges, err := c.BadgeService.ListBadges(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// MyBadges godoc
// @Summary 我的徽章
// @Tags 徽章
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Badge}
// @Router /api/badges/mine [get]
func (c *BadgeController) MyBadges(ctx *gin.Context) {
	badges, err := c.BadgeService.UserBadges(ctx.Request.Context(), util.GetUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// CheckBadges godoc
// @Summary 重新检查徽章
// @Description 按已完成关卡补发应得的徽章
// @Tags 徽章
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/badges/check [post]
func (c *BadgeController) CheckBadges(ctx *gin.Context) {
	awarded, err := c.BadgeService.CheckForBadges(ctx.Request.Context(), util.GetUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	if awarded == nil {
		awarded = []string{}
	}
	util.Success(ctx, gin.H{"newBadges": awarded})
}

// SaveBadge godoc
// @Summary 创建或更新徽章
// @Tags 创作者
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.Badge true "徽章"
// @Success 200 {object} util.Response{data=model.Badge}
// @Failure 400 {object} util.Response
// @Router /api/creator/badges [post]
func (c *BadgeController) SaveBadge(ctx *gin.Context) {
	var badge model.Badge
	if err := ctx.ShouldBindJSON(&badge); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if id := ctx.Param("id"); id != "" {
		badge.ID = id
	}
	if badge.ID == "" || badge.Name == "" {
		util.BadRequest(ctx, "id and name are required")
		return
	}

	if err := c.BadgeService.SaveBadge(ctx.Request.Context(), &badge); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, badge)
}

// DeleteBadge godoc
// @Summary 删除徽章
// @Tags 创作者
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "徽章ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/creator/badges/{id} [delete]
func (c *BadgeController) DeleteBadge(ctx *gin.Context) {
	if err := c.BadgeService.DeleteBadge(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
