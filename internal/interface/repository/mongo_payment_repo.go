package repository

import (
	"context"

	"agency-report-service/internal/domain/entity"
	"agency-report-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoPaymentRepository reads the payments collection
type MongoPaymentRepository struct {
	pager mongoPager
}

// NewMongoPaymentRepository creates a payment source
func NewMongoPaymentRepository(db *mongo.Database) *MongoPaymentRepository {
	return &MongoPaymentRepository{
		pager: mongoPager{
			collection:  db.Collection("payments"),
			defaultSort: repository.Sort{Field: idField, Direction: repository.SortAsc},
		},
	}
}

// EnsureIndexes creates the payment date indexes
func (r *MongoPaymentRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, r.pager.collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "paidAt", Value: -1}}},
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "paidAt", Value: -1}}},
	})
}

// FetchPayments returns one page of payments
func (r *MongoPaymentRepository) FetchPayments(ctx context.Context, q repository.Query) (*repository.PaymentPage, error) {
	page, err := r.pager.find(ctx, q)
	if err != nil {
		return nil, err
	}

	items := make([]entity.PaymentEntry, 0, len(page.docs))
	for _, doc := range page.docs {
		var p entity.PaymentEntry
		if err := bson.Unmarshal(doc, &p); err != nil {
			continue
		}
		p.ID = decodeID(doc)
		items = append(items, p)
	}
	return &repository.PaymentPage{Items: items, NextCursor: page.nextCursor}, nil
}
