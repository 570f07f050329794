package database

import (
	"code4u_backend/internal/catalog"
	"code4u_backend/internal/config"
	"code4u_backend/internal/model"
	"code4u_backend/pkg/logger"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB 按配置的驱动建立连接（mysql / postgres / sqlite）
func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		// 本地开发用，dbname 为数据库文件路径
		dialector = sqlite.Open(cfg.DBName)
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			cfg.Host,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.Port,
			cfg.SSLMode,
		)
		dialector = postgres.Open(dsn)
	default:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		dialector = mysql.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Log.Info("Database connection established", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate 同步表结构
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.UserCompletedLevel{},
		&model.UserBadge{},
		&model.Journey{},
		&model.LearningPath{},
		&model.Level{},
		&model.Badge{},
		&model.JourneyProgress{},
		&model.JourneyLevelCompletion{},
		&model.PathProgress{},
		&model.UserActivity{},
		&model.LegalDocument{},
		&model.Feedback{},
	)
	if err != nil {
		return err
	}

	logger.Log.Info("Database migration completed")
	return nil
}

// SeedDefaults 写入内置的旅程、关卡、徽章和法律文档，已存在的记录保持不变
func SeedDefaults(db *gorm.DB) error {
	c, err := catalog.Default()
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		doNothing := clause.OnConflict{DoNothing: true}

		if len(c.Journeys) > 0 {
			if err := tx.Clauses(doNothing).Create(&c.Journeys).Error; err != nil {
				return fmt.Errorf("seed journeys: %w", err)
			}
		}
		if len(c.Levels) > 0 {
			if err := tx.Clauses(doNothing).Create(&c.Levels).Error; err != nil {
				return fmt.Errorf("seed levels: %w", err)
			}
		}
		if len(c.Badges) > 0 {
			if err := tx.Clauses(doNothing).Create(&c.Badges).Error; err != nil {
				return fmt.Errorf("seed badges: %w", err)
			}
		}

		docs := make([]model.LegalDocument, len(c.Legal))
		for i, d := range c.Legal {
			d.LastUpdated = time.Now()
			docs[i] = d
		}
		if len(docs) > 0 {
			if err := tx.Clauses(doNothing).Create(&docs).Error; err != nil {
				return fmt.Errorf("seed legal documents: %w", err)
			}
		}

		logger.Log.Info("Default catalog seeded",
			zap.Int("journeys", len(c.Journeys)),
			zap.Int("levels", len(c.Levels)),
			zap.Int("badges", len(c.Badges)))
		return nil
	})
}
