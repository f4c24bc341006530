package dao

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Quockhanh0712/vielegalrag-demo/config"
	"github.com/Quockhanh0712/vielegalrag-demo/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 全局数据库连接
var DB *gorm.DB

func Init() error {
	cfg := config.Cfg.Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite", "":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return fmt.Errorf("failed to create database dir: %w", err)
		}
		dialector = sqlite.Open(cfg.Path)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Session{},
		&model.Message{},
		&model.MessageSource{},
		&model.AnswerMetrics{},
		&model.UserDocument{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	DB = db
	return nil
}

// Ping reports database reachability for the status endpoint.
func Ping(ctx context.Context) error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
