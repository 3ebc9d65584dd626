package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saadjs/nutrilog/internal/events"
)

func TestRedisPublisherWritesStreamEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	publisher := events.NewRedisPublisher(client, "nutrilog:meal-events", 1000, zap.NewNop())
	defer publisher.Close()

	ctx := context.Background()
	event := events.MealLogged{
		EntryID:     1,
		EntryUID:    "0b6f2a4e-1c1d-4c59-9a38-8d2f6f0e7a11",
		PatientID:   5,
		DishID:      2,
		DishName:    "Lentil stew",
		LoggedAt:    time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		MealSlot:    "lunch",
		ServingMode: "age_band",
		Amounts:     map[int64]float64{1: 4.64},
		Deficits:    map[int64]float64{1: 2.36},
	}
	require.NoError(t, publisher.PublishMealLogged(ctx, event))

	messages, err := client.XRange(ctx, "nutrilog:meal-events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)

	values := messages[0].Values
	assert.Equal(t, events.TypeMealLogged, values["type"])
	assert.Equal(t, "5", values["patient_id"])
	assert.Equal(t, "2026-03-02T12:00:00Z", values["logged_at"])

	var amounts map[string]float64
	require.NoError(t, json.Unmarshal([]byte(values["amounts"].(string)), &amounts))
	assert.Equal(t, 4.64, amounts["1"])
	assert.Contains(t, values, "deficits")
}

func TestRedisPublisherReportsUnavailableServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	publisher := events.NewRedisPublisher(client, "nutrilog:meal-events", 0, nil)
	defer publisher.Close()
	mr.Close()

	err := publisher.PublishMealLogged(context.Background(), events.MealLogged{EntryUID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish meal.logged")
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, events.Nop{}.PublishMealLogged(context.Background(), events.MealLogged{}))
}
