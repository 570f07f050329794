package controller

import (
	"code4u_backend/internal/service"
	"code4u_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MigrationController struct {
	PathMigration *service.PathMigrationService
}

func NewMigrationController(pathMigration *service.PathMigrationService) *MigrationController {
	return &MigrationController{PathMigration: pathMigration}
}

// MigratePaths godoc
// @Summary 迁移学习路径
// @Description 将旧版学习路径及其进度转换为旅程，可重复执行
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.PathMigrationResult}
// @Router /api/admin/migrations/paths [post]
func (c *MigrationController) MigratePaths(ctx *gin.Context) {
	result, err := c.PathMigration.MigratePathsToJourneys(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
