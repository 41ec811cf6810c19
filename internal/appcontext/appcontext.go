package appcontext

import (
	"cloud.google.com/go/storage"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/multinet-app/multinet-api/internal/arango"
)

type Context struct {
	DB     *gorm.DB
	Logger *zap.Logger

	Arango *arango.Client

	GCSClient     *storage.Client
	GCSBucketName string

	Queue *asynq.Client
}
