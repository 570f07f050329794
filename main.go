// @title Code4U 后端 API
// @version 1.0
// @description Code4U 前端编程闯关学习平台的后端服务器。
// @termsOfService http://swagger.io/terms/

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"code4u_backend/internal/app"
	"code4u_backend/internal/config"
	"code4u_backend/pkg/logger"
	"context"
	"flag"
	"log"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	importLevels := flag.String("import-levels", "", "从 .json 或 .xlsx 文件导入关卡，完成后退出")
	migratePaths := flag.Bool("migrate-paths", false, "将旧版学习路径迁移为旅程，完成后退出")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	if *importLevels != "" || *migratePaths {
		runCommands(application, *importLevels, *migratePaths)
		return
	}

	application.Run()
}

func runCommands(application *app.App, importPath string, migratePaths bool) {
	ctx := context.Background()
	if err := application.WarmUp(ctx); err != nil {
		logger.Log.Fatal("Failed to seed defaults", zap.Error(err))
	}

	if importPath != "" {
		result, err := application.ImportLevels(ctx, importPath)
		if err != nil {
			logger.Log.Fatal("Level import failed", zap.String("path", importPath), zap.Error(err))
		}
		logger.Log.Info("Level import finished",
			zap.Int("total", result.Total),
			zap.Int("imported", result.Imported),
			zap.Int("skipped", result.Skipped),
			zap.Strings("errors", result.Errors))
	}

	if migratePaths {
		result, err := application.MigratePaths(ctx)
		if err != nil {
			logger.Log.Fatal("Path migration failed", zap.Error(err))
		}
		logger.Log.Info("Path migration finished",
			zap.Int("journeys", result.Journeys),
			zap.Int("progress", result.Progress))
	}
}
