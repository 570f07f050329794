package controller

import (
	"code4u_backend/internal/model"
	"code4u_backend/internal/service"
	"code4u_backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// GetProfile godoc
// @Summary 获取个人资料
// @Tags 用户
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/users/profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	user, err := c.UserService.GetUserByID(ctx.Request.Context(), util.GetUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" binding:"required,max=100"`
}

// UpdateProfile godoc
// @Summary 更新个人资料
// @Tags 用户
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body UpdateProfileRequest true "资料"
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/users/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	var req UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(ctx.Request.Context(), util.GetUserID(ctx), req.DisplayName)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// UploadAvatar godoc
// @Summary 上传头像
// @Description 支持 jpg/png/gif/webp，最大 5MB；存储无权限时以 data URL 保存
// @Tags 用户
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "头像"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response
// @Router /api/users/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "No file uploaded")
		return
	}
	if file.Size > util.MaxAvatarSize {
		util.Error(ctx, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	if !util.HasAllowedExtension(file.Filename, util.AllowedImageExtensions) {
		util.BadRequest(ctx, util.ErrInvalidFileType.Error())
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	user, err := c.UserService.UploadProfilePicture(ctx.Request.Context(), util.GetUserID(ctx), src, file.Size)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// DeleteAvatar godoc
// @Summary 删除头像
// @Tags 用户
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/users/avatar [delete]
func (c *UserController) DeleteAvatar(ctx *gin.Context) {
	user, err := c.UserService.DeleteProfilePicture(ctx.Request.Context(), util.GetUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// publicOrAuthed 排行榜未公开时要求登录
func (c *UserController) publicOrAuthed(ctx *gin.Context) bool {
	if c.UserService.LeaderboardPublic() || util.GetUserFromContext(ctx) != nil {
		return true
	}
	util.Unauthorized(ctx)
	return false
}

// Leaderboard godoc
// @Summary 排行榜
// @Description 按积分降序；可配置为仅登录可见
// @Tags 用户
// @Produce json
// @Param limit query int false "返回条数，最大100"
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Failure 401 {object} util.Response
// @Router /api/leaderboard [get]
func (c *UserController) Leaderboard(ctx *gin.Context) {
	if !c.publicOrAuthed(ctx) {
		return
	}

	entries, err := c.UserService.Leaderboard(ctx.Request.Context(), c.UserService.ResolveLimit(ctx.Query("limit")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// RecentActivities godoc
// @Summary 最新动态
// @Tags 用户
// @Produce json
// @Param limit query int false "返回条数，最大100"
// @Success 200 {object} util.Response{data=[]model.UserActivity}
// @Failure 401 {object} util.Response
// @Router /api/activities [get]
func (c *UserController) RecentActivities(ctx *gin.Context) {
	if !c.publicOrAuthed(ctx) {
		return
	}

	activities, err := c.UserService.RecentActivities(ctx.Request.Context(), c.UserService.ResolveLimit(ctx.Query("limit")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, activities)
}

// MyActivities godoc
// @Summary 我的动态
// @Tags 用户
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "返回条数，最大100"
// @Success 200 {object} util.Response{data=[]model.UserActivity}
// @Router /api/users/activities [get]
func (c *UserController) MyActivities(ctx *gin.Context) {
	activities, err := c.UserService.UserActivities(ctx.Request.Context(), util.GetUserID(ctx), c.UserService.ResolveLimit(ctx.Query("limit")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, activities)
}

// GetUsers godoc
// @Summary 获取用户列表
// @Description 支持按角色、状态和关键字筛选
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param role query string false "角色"
// @Param status query string false "状态: active, disabled"
// @Param search query string false "显示名或邮箱"
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/users [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	filter := service.UserFilter{
		Role:   ctx.Query("role"),
		Status: ctx.Query("status"),
		Search: ctx.Query("search"),
	}

	users, total, err := c.UserService.GetUsers(ctx.Request.Context(), page, limit, filter)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"items": users,
		"total": total,
		"page":  page,
	})
}

// swagger:model SetRoleRequest
type SetRoleRequest struct {
	Role model.UserRole `json:"role" binding:"required"`
}

// SetRole godoc
// @Summary 修改用户角色
// @Tags 管理员
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "用户ID"
// @Param body body SetRoleRequest true "角色"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/admin/users/{id}/role [put]
func (c *UserController) SetRole(ctx *gin.Context) {
	var req SetRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.SetRole(ctx.Request.Context(), ctx.Param("id"), req.Role); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// swagger:model DisableUserRequest
type DisableUserRequest struct {
	Disabled bool `json:"disabled"`
}

// DisableUser godoc
// @Summary 禁用或启用用户
// @Tags 管理员
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "用户ID"
// @Param body body DisableUserRequest true "状态"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/status [put]
func (c *UserController) DisableUser(ctx *gin.Context) {
	var req DisableUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if ctx.Param("id") == util.GetUserID(ctx) {
		util.BadRequest(ctx, "cannot change your own status")
		return
	}

	if err := c.UserService.DisableUser(ctx.Request.Context(), ctx.Param("id"), req.Disabled); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
