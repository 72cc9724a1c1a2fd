package repository

import (
	"testing"
	"time"

	"agency-report-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFromMap(t *testing.T) {
	created := time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)
	rec := recordFromMap("doc-1", entity.EntityTour, map[string]interface{}{
		"customerId": "c-7",
		"createdAt":  created,
		"status":     "confirmed",
		"payment":    map[string]interface{}{"price": "3,250.00", "cost": int64(2000)},
		"tourName":   "Bromo sunrise",
	})

	assert.Equal(t, "doc-1", rec.ID)
	assert.Equal(t, entity.EntityTour, rec.EntityType)
	assert.Equal(t, "c-7", rec.CustomerID)
	require.NotNil(t, rec.CreatedAt)
	assert.True(t, created.Equal(*rec.CreatedAt))
	assert.InDelta(t, 3250, rec.Payment.Price.Float(), 1e-9)
	assert.InDelta(t, 2000, rec.Payment.Cost.Float(), 1e-9)
	assert.Equal(t, map[string]interface{}{"tourName": "Bromo sunrise"}, rec.Extra)
}

func TestRecordFromMap_BadValuesBecomeZero(t *testing.T) {
	rec := recordFromMap("doc-2", entity.EntityVisa, map[string]interface{}{
		"createdAt": "yesterday",
		"payment":   "n/a",
	})
	assert.Nil(t, rec.CreatedAt)
	assert.Zero(t, rec.Payment.Price)
	assert.Empty(t, rec.CustomerID)
}

func TestAsTime(t *testing.T) {
	assert.Nil(t, asTime(nil))
	assert.Nil(t, asTime(time.Time{}))
	assert.Nil(t, asTime(true))

	parsed := asTime("2025-04-02T09:30:00Z")
	require.NotNil(t, parsed)
	assert.Equal(t, 2025, parsed.Year())

	millis := asTime(int64(1735689600000))
	require.NotNil(t, millis)
	assert.Equal(t, int64(1735689600), millis.Unix())
}

func TestLogFromMap(t *testing.T) {
	entry := logFromMap("l-1", map[string]interface{}{
		"actionTime":   time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC),
		"actionType":   entity.ActionLogin,
		"category":     entity.CategoryAuth,
		"employeeId":   "E1",
		"employeeName": "Sari",
		"clientInfo":   map[string]interface{}{"browser": "Firefox"},
	})
	assert.Equal(t, "l-1", entry.ID)
	assert.Equal(t, entity.ActionLogin, entry.ActionType)
	assert.Equal(t, "Firefox", entry.ClientInfo["browser"])
	assert.False(t, entry.ActionTime.IsZero())

	undated := logFromMap("l-2", map[string]interface{}{})
	assert.True(t, undated.ActionTime.IsZero())
}
