package repository

import (
	"context"

	"agency-report-service/internal/domain/entity"
	"agency-report-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// BookingCollections maps each booking entity type to its collection name
var BookingCollections = map[entity.EntityType]string{
	entity.EntityFlight: "flights",
	entity.EntityHotel:  "hotels",
	entity.EntityVisa:   "visas",
	entity.EntityTour:   "tours",
}

// MongoRecordRepository reads one booking collection
type MongoRecordRepository struct {
	pager      mongoPager
	entityType entity.EntityType
}

// NewMongoRecordRepository creates a record source for entityType
func NewMongoRecordRepository(db *mongo.Database, entityType entity.EntityType) *MongoRecordRepository {
	return &MongoRecordRepository{
		pager: mongoPager{
			collection:  db.Collection(BookingCollections[entityType]),
			defaultSort: repository.Sort{Field: idField, Direction: repository.SortAsc},
		},
		entityType: entityType,
	}
}

// EnsureIndexes creates the indexes report queries filter on
func (r *MongoRecordRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, r.pager.collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "employeeId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
}

// FetchRecords returns one page of bookings tagged with the entity type
func (r *MongoRecordRepository) FetchRecords(ctx context.Context, q repository.Query) (*repository.RecordPage, error) {
	page, err := r.pager.find(ctx, q)
	if err != nil {
		return nil, err
	}

	items := make([]entity.Record, 0, len(page.docs))
	for _, doc := range page.docs {
		var rec entity.Record
		if err := bson.Unmarshal(doc, &rec); err != nil {
			continue
		}
		rec.ID = decodeID(doc)
		rec.EntityType = r.entityType
		delete(rec.Extra, idField)
		items = append(items, rec)
	}
	return &repository.RecordPage{Items: items, NextCursor: page.nextCursor}, nil
}
