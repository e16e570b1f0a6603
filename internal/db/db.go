package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"kkmk/internal/config"
	"kkmk/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 预设分类，名称即帖子 category 字段的规范写法
var defaultCategories = []models.Category{
	{Name: "General", Description: "General discussion"},
	{Name: "Announcements", Description: "News and updates from the team"},
	{Name: "Events", Description: "Upcoming events and activities"},
	{Name: "Questions", Description: "Ask the community"},
	{Name: "Support", Description: "Help with programs and services"},
	{Name: "Suggestions", Description: "Ideas to improve the community"},
}

// DSN 优先使用 DATABASE_URL，否则由 DB_* 拼接
func DSN(cfg config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBName, cfg.DBSSLMode)
	if cfg.DBPassword != "" {
		dsn += " password=" + cfg.DBPassword
	}
	return dsn
}

// GormConfig 所有驱动共用：唯一约束冲突翻译为 gorm.ErrDuplicatedKey
func GormConfig(level string) *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "", log.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  toGormLogLevel(level),
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
		TranslateError: true,
	}
}

// Open connects to Postgres, tunes the pool and pings once.
func Open(cfg config.Config, zl *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), GormConfig(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	zl.Info("database connection established",
		zap.String("host", cfg.DBHost),
		zap.String("database", cfg.DBName))
	return db, nil
}

// Migrate 建表并写入预设分类
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Post{},
		&models.Comment{},
		&models.Poll{},
		&models.PollOption{},
		&models.PostLike{},
		&models.CommentLike{},
		&models.PollVote{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return SeedCategories(db)
}

// SeedCategories 只补齐缺失的分类，可重复执行
func SeedCategories(db *gorm.DB) error {
	for _, c := range defaultCategories {
		category := c
		if err := db.Where(models.Category{Name: category.Name}).
			Attrs(models.Category{Description: category.Description}).
			FirstOrCreate(&category).Error; err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Name, err)
		}
	}
	return nil
}

// toGormLogLevel debug 才打印 SQL，其余只保留慢查询和错误
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}
