package controller

import (
	"code4u_backend/internal/model"
	"code4u_backend/internal/service"
	"code4u_backend/internal/util"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// 导入文件大小上限
const maxImportSize = 10 << 20

type GameController struct {
	GameService   *service.GameService
	ImportService *service.LevelImportService
}

func NewGameController(gameService *service.GameService, importService *service.LevelImportService) *GameController {
	return &GameController{GameService: gameService, ImportService: importService}
}

// ListLevels godoc
// @Summary 关卡列表
// @Description 返回已发布的关卡，可按分类筛选，不包含答案
// @Tags 关卡
// @Produce json
// @Param category query string false "分类: HTML, CSS, JavaScript"
// @Success 200 {object} util.Response{data=[]service.LevelView}
// @Router /api/levels [get]
func (c *GameController) ListLevels(ctx *gin.Context) {
	levels, err := c.GameService.ListLevels(ctx.Request.Context(), ctx.Query("category"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	views := make([]service.LevelView, 0, len(levels))
	for i := range levels {
		views = append(views, service.NewLevelView(&levels[i]))
	}
	util.Success(ctx, views)
}

// GetLevel godoc
// @Summary 关卡详情
// @Tags 关卡
// @Produce json
// @Param id path string true "关卡ID"
// @Success 200 {object} util.Response{data=service.LevelView}
// @Failure 404 {object} util.Response
// @Router /api/levels/{id} [get]
func (c *GameController) GetLevel(ctx *gin.Context) {
	level, err := c.GameService.LoadLevel(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, service.NewLevelView(level))
}

// StartGame godoc
// @Summary 开始关卡
// @Description 创建新的游戏会话，从第一个任务开始
// @Tags 关卡
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "关卡ID"
// @Success 200 {object} util.Response{data=service.GameState}
// @Failure 404 {object} util.Response
// @Router /api/levels/{id}/start [post]
func (c *GameController) StartGame(ctx *gin.Context) {
	state, err := c.GameService.StartGame(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// swagger:model RunCodeRequest
type RunCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// RunCode godoc
// @Summary 运行代码
// @Description 评判当前任务的提交
// @Tags 关卡
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "关卡ID"
// @Param body body RunCodeRequest true "代码"
// @Success 200 {object} util.Response{data=service.GameState}
// @Failure 409 {object} util.Response "未开始关卡"
// @Router /api/levels/{id}/run [post]
func (c *GameController) RunCode(ctx *gin.Context) {
	var req RunCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	state, err := c.GameService.RunCode(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("id"), req.Code)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// NextTask godoc
// @Summary 下一个任务
// @Tags 关卡
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "关卡ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "当前任务未通过"
// @Router /api/levels/{id}/next [post]
func (c *GameController) NextTask(ctx *gin.Context) {
	state, more, err := c.GameService.NextTask(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"state":   state,
		"hasNext": more,
	})
}

// swagger:model CompleteLevelRequest
type CompleteLevelRequest struct {
	JourneyID string `json:"journeyId"`
}

// CompleteLevel godoc
// @Summary 完成关卡
// @Description 所有任务通过后记录完成，首次完成发放积分，并检查徽章
// @Tags 关卡
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "关卡ID"
// @Param body body CompleteLevelRequest false "所属旅程"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Failure 400 {object} util.Response "仍有任务未通过"
// @Router /api/levels/{id}/complete [post]
func (c *GameController) CompleteLevel(ctx *gin.Context) {
	var req CompleteLevelRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	result, err := c.GameService.CompleteLevel(ctx.Request.Context(), util.GetUserID(ctx), ctx.Param("id"), req.JourneyID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetProgress godoc
// @Summary 我的学习进度
// @Tags 关卡
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserProgress}
// @Router /api/progress [get]
func (c *GameController) GetProgress(ctx *gin.Context) {
	progress, err := c.GameService.FetchUserProgress(ctx.Request.Context(), util.GetUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// SaveLevel godoc
// @Summary 创建或更新关卡
// @Tags 创作者
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.Level true "关卡"
// @Success 200 {object} util.Response{data=model.Level}
// @Failure 400 {object} util.Response
// @Router /api/creator/levels [post]
func (c *GameController) SaveLevel(ctx *gin.Context) {
	var level model.Level
	if err := ctx.ShouldBindJSON(&level); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if id := ctx.Param("id"); id != "" {
		level.ID = id
	}
	if level.ID == "" || level.Title == "" {
		util.BadRequest(ctx, "id and title are required")
		return
	}
	level.CreatedBy = util.GetUserID(ctx)

	if err := c.GameService.SaveLevel(ctx.Request.Context(), &level); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, level)
}

// DeleteLevel godoc
// @Summary 删除关卡
// @Tags 创作者
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "关卡ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/creator/levels/{id} [delete]
func (c *GameController) DeleteLevel(ctx *gin.Context) {
	if err := c.GameService.DeleteLevel(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ImportLevels godoc
// @Summary 批量导入关卡
// @Description 上传 .json 或 .xlsx 文件，已存在的关卡跳过
// @Tags 创作者
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "关卡文件"
// @Success 200 {object} util.Response{data=service.ImportResult}
// @Failure 400 {object} util.Response
// @Router /api/creator/levels/import [post]
func (c *GameController) ImportLevels(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "No file uploaded")
		return
	}
	if file.Size > maxImportSize {
		util.Error(ctx, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".json" && ext != ".xlsx" {
		util.BadRequest(ctx, util.ErrInvalidFileType.Error())
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	result, err := c.ImportService.ImportReader(ctx.Request.Context(), file.Filename, src)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, result)
}
