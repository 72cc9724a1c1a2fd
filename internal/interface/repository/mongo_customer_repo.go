package repository

import (
	"context"

	"agency-report-service/internal/domain/entity"
	"agency-report-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCustomerRepository reads the customers collection
type MongoCustomerRepository struct {
	pager mongoPager
}

// NewMongoCustomerRepository creates a customer source
func NewMongoCustomerRepository(db *mongo.Database) *MongoCustomerRepository {
	return &MongoCustomerRepository{
		pager: mongoPager{
			collection:  db.Collection("customers"),
			defaultSort: repository.Sort{Field: idField, Direction: repository.SortAsc},
		},
	}
}

// EnsureIndexes creates the sign-up date index
func (r *MongoCustomerRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, r.pager.collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
}

// FetchCustomers returns one page of customers
func (r *MongoCustomerRepository) FetchCustomers(ctx context.Context, q repository.Query) (*repository.CustomerPage, error) {
	page, err := r.pager.find(ctx, q)
	if err != nil {
		return nil, err
	}

	items := make([]entity.Customer, 0, len(page.docs))
	for _, doc := range page.docs {
		var c entity.Customer
		if err := bson.Unmarshal(doc, &c); err != nil {
			continue
		}
		c.ID = decodeID(doc)
		items = append(items, c)
	}
	return &repository.CustomerPage{Items: items, NextCursor: page.nextCursor}, nil
}
