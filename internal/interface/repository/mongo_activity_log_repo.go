package repository

import (
	"context"

	"agency-report-service/internal/domain/entity"
	"agency-report-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoActivityLogRepository reads the append-only activity_logs collection
type MongoActivityLogRepository struct {
	pager mongoPager
}

// NewMongoActivityLogRepository creates an activity log source
func NewMongoActivityLogRepository(db *mongo.Database) *MongoActivityLogRepository {
	return &MongoActivityLogRepository{
		pager: mongoPager{
			collection:  db.Collection("activity_logs"),
			defaultSort: repository.Sort{Field: "actionTime", Direction: repository.SortDesc},
		},
	}
}

// EnsureIndexes creates one index per supported filter, each ending in actionTime
func (r *MongoActivityLogRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, r.pager.collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "actionTime", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "actionTime", Value: -1}}},
		{Keys: bson.D{{Key: "actionType", Value: 1}, {Key: "actionTime", Value: -1}}},
		{Keys: bson.D{{Key: "employeeId", Value: 1}, {Key: "actionTime", Value: -1}}},
	})
}

// FetchLogs returns one page of log entries
func (r *MongoActivityLogRepository) FetchLogs(ctx context.Context, q repository.Query) (*repository.ActivityLogPage, error) {
	page, err := r.pager.find(ctx, q)
	if err != nil {
		return nil, err
	}

	items := make([]entity.ActivityLogEntry, 0, len(page.docs))
	for _, doc := range page.docs {
		var e entity.ActivityLogEntry
		if err := bson.Unmarshal(doc, &e); err != nil {
			continue
		}
		e.ID = decodeID(doc)
		items = append(items, e)
	}
	return &repository.ActivityLogPage{Items: items, NextCursor: page.nextCursor}, nil
}
