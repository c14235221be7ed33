package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opendatahub/dataset-api/internal/core/domain"
)

const downloadLogsCollection = "download_logs"

// DownloadLogRepository appends download audit records. Logs are never
// mutated or deleted.
type DownloadLogRepository struct {
	coll *mongo.Collection
}

func NewDownloadLogRepository(db *mongo.Database) *DownloadLogRepository {
	return &DownloadLogRepository{coll: db.Collection(downloadLogsCollection)}
}

func (r *DownloadLogRepository) Insert(ctx context.Context, log *domain.DownloadLog) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"ip":         log.IP,
		"created_at": log.CreatedAt,
	}
	if oid, err := primitive.ObjectIDFromHex(log.DatasetID); err == nil {
		doc["dataset"] = oid
	}
	if log.UserID != "" {
		if oid, err := primitive.ObjectIDFromHex(log.UserID); err == nil {
			doc["user"] = oid
		}
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert download log: %w", err)
	}
	return nil
}
