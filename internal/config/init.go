package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/arango"
	"github.com/multinet-app/multinet-api/internal/entity"
)

func InitContext() (*appcontext.Context, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Warn("No .env file found, using environment variables")
	}

	logger, err := InitLogger()
	if err != nil {
		return nil, err
	}

	db, err := InitDB()
	if err != nil {
		return nil, err
	}

	arangoClient, err := InitArango(logger)
	if err != nil {
		return nil, err
	}

	gcsClient, err := InitGCSClient()
	if err != nil {
		return nil, err
	}

	ctx := &appcontext.Context{
		DB:     db,
		Logger: logger,

		Arango: arangoClient,

		GCSClient:     gcsClient,
		GCSBucketName: os.Getenv("GCS_BUCKET_NAME"),

		Queue: asynq.NewClient(RedisOpt()),
	}

	return ctx, nil
}

func InitDB() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	err = db.AutoMigrate(
		&entity.User{},
		&entity.Workspace{},
		&entity.WorkspaceRole{},
		&entity.Table{},
		&entity.TableTypeAnnotation{},
		&entity.Network{},
		&entity.Upload{},
		&entity.AqlQuery{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func InitLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func InitArango(logger *zap.Logger) (*arango.Client, error) {
	url := os.Getenv("ARANGO_URL")
	if url == "" {
		return nil, fmt.Errorf("ARANGO_URL environment variable is not set")
	}

	client, err := arango.NewClient(url, os.Getenv("ARANGO_PASSWORD"), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize arango client: %w", err)
	}
	return client, nil
}

func InitGCSClient() (*storage.Client, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCS client: %w", err)
	}
	return client, nil
}

// RedisOpt is the connection configuration shared by the task queue client
// and the worker.
func RedisOpt() asynq.RedisClientOpt {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	return asynq.RedisClientOpt{Addr: addr}
}
