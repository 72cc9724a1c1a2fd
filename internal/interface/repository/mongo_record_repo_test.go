package repository

import (
	"context"
	"testing"
	"time"

	"agency-report-service/internal/domain"
	"agency-report-service/internal/domain/entity"
	"agency-report-service/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoRecordRepository_FetchRecords(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	created := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	first, second, third := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("probe document becomes the next cursor", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".flights"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: first},
				{Key: "customerId", Value: "c-1"},
				{Key: "employeeId", Value: "E1"},
				{Key: "createdAt", Value: created},
				{Key: "status", Value: "confirmed"},
				{Key: "payment", Value: bson.D{{Key: "price", Value: "1,500"}, {Key: "cost", Value: int32(900)}}},
				{Key: "airline", Value: "GA"},
			},
			bson.D{
				{Key: "_id", Value: second},
				{Key: "customerId", Value: "c-2"},
				{Key: "payment", Value: bson.D{{Key: "price", Value: 800.0}}},
			},
			bson.D{{Key: "_id", Value: third}, {Key: "customerId", Value: "c-3"}},
		))

		repo := NewMongoRecordRepository(mt.DB, entity.EntityFlight)
		page, err := repo.FetchRecords(context.Background(), repository.Query{Limit: 2})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		require.NotEmpty(t, page.NextCursor)

		r := page.Items[0]
		assert.Equal(t, first.Hex(), r.ID)
		assert.Equal(t, entity.EntityFlight, r.EntityType)
		assert.Equal(t, "E1", r.EmployeeID)
		require.NotNil(t, r.CreatedAt)
		assert.True(t, created.Equal(*r.CreatedAt))
		assert.InDelta(t, 1500, r.Payment.Price.Float(), 1e-9)
		assert.InDelta(t, 900, r.Payment.Cost.Float(), 1e-9)
		assert.Equal(t, "GA", r.Extra["airline"])
		assert.NotContains(t, r.Extra, "_id")

		assert.Nil(t, page.Items[1].CreatedAt)
		assert.Zero(t, page.Items[1].Payment.Cost)
	})

	mt.Run("last page has no cursor", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".hotels"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "h-1"}, {Key: "customerId", Value: "c-1"}},
		))

		repo := NewMongoRecordRepository(mt.DB, entity.EntityHotel)
		page, err := repo.FetchRecords(context.Background(), repository.Query{Limit: 2})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "h-1", page.Items[0].ID)
		assert.Empty(t, page.NextCursor)
	})

	mt.Run("malformed documents are skipped", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".visas"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "v-1"}, {Key: "customerId", Value: bson.A{"not", "a", "string"}}},
			bson.D{{Key: "_id", Value: "v-2"}, {Key: "customerId", Value: "c-2"}},
		))

		repo := NewMongoRecordRepository(mt.DB, entity.EntityVisa)
		page, err := repo.FetchRecords(context.Background(), repository.Query{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "v-2", page.Items[0].ID)
	})

	mt.Run("command errors are source failures", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on agency",
		}))

		repo := NewMongoRecordRepository(mt.DB, entity.EntityTour)
		_, err := repo.FetchRecords(context.Background(), repository.Query{})
		var unavailable *domain.SourceUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, "tours", unavailable.Source)
	})

	mt.Run("cursor from another query is rejected before the round trip", func(mt *mtest.T) {
		repo := NewMongoRecordRepository(mt.DB, entity.EntityTour)
		_, err := repo.FetchRecords(context.Background(), repository.Query{
			Filters: []repository.Predicate{repository.Eq("status", "confirmed")},
			Cursor:  "eyJmIjoiMDAwMCIsImsiOiJudWxsIiwiaWQiOiJ4In0",
		})
		assert.ErrorIs(t, err, domain.ErrCursorMismatch)
	})
}
