package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"xplore/config"
	"xplore/models"
	"xplore/storage"
)

func main() {
	cfg, err := config.Read()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	db, err := gorm.Open(mysql.Open(cfg.DB.DSN), &gorm.Config{})
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
	); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	media, err := storage.NewMinioStore(
		cfg.S3.Endpoint,
		cfg.S3.AccessKey,
		cfg.S3.SecretKey,
		cfg.S3.Bucket,
		cfg.S3.UseSSL,
	)
	if err != nil {
		slog.Error("object store connection failed", "error", err)
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	app := NewApp(cfg, db, media, rdb)
	app.notifier.Start()
	app.StartLikeSync(context.Background(), cfg.Redis.SyncTick)

	if err := app.Router().Run(":" + cfg.Server.Port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
