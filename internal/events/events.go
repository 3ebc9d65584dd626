// Package events publishes meal log events for downstream consumers such as alerting.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const TypeMealLogged = "meal.logged"

// MealLogged is emitted after a meal log entry is committed. Deficits holds, for the
// entry's local day, how far each targeted nutrient still is below its daily target.
type MealLogged struct {
	EntryID     int64             `json:"entry_id"`
	EntryUID    string            `json:"entry_uid"`
	PatientID   int64             `json:"patient_id"`
	DishID      int64             `json:"dish_id"`
	DishName    string            `json:"dish_name"`
	LoggedAt    time.Time         `json:"logged_at"`
	MealSlot    string            `json:"meal_slot,omitempty"`
	ServingMode string            `json:"serving_mode"`
	Amounts     map[int64]float64 `json:"amounts"`
	Deficits    map[int64]float64 `json:"deficits,omitempty"`
}

type Publisher interface {
	PublishMealLogged(ctx context.Context, event MealLogged) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishMealLogged(context.Context, MealLogged) error { return nil }

type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *zap.Logger
}

// NewRedisPublisher XADDs events to stream. maxLen > 0 trims the stream approximately.
func NewRedisPublisher(client *redis.Client, stream string, maxLen int64, logger *zap.Logger) *RedisPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{client: client, stream: stream, maxLen: maxLen, logger: logger}
}

func (p *RedisPublisher) PublishMealLogged(ctx context.Context, event MealLogged) error {
	amounts, err := json.Marshal(event.Amounts)
	if err != nil {
		return fmt.Errorf("marshal event amounts: %w", err)
	}
	values := map[string]interface{}{
		"type":         TypeMealLogged,
		"entry_id":     strconv.FormatInt(event.EntryID, 10),
		"entry_uid":    event.EntryUID,
		"patient_id":   strconv.FormatInt(event.PatientID, 10),
		"dish_id":      strconv.FormatInt(event.DishID, 10),
		"dish_name":    event.DishName,
		"logged_at":    event.LoggedAt.UTC().Format(time.RFC3339),
		"meal_slot":    event.MealSlot,
		"serving_mode": event.ServingMode,
		"amounts":      string(amounts),
	}
	if len(event.Deficits) > 0 {
		deficits, err := json.Marshal(event.Deficits)
		if err != nil {
			return fmt.Errorf("marshal event deficits: %w", err)
		}
		values["deficits"] = string(deficits)
	}

	args := &redis.XAddArgs{Stream: p.stream, Values: values}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("publish %s to stream %s: %w", TypeMealLogged, p.stream, err)
	}
	p.logger.Debug("published meal event",
		zap.String("stream", p.stream),
		zap.String("message_id", id),
		zap.String("entry_uid", event.EntryUID),
	)
	return nil
}

// Close releases the redis client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
