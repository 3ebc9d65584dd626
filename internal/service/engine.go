package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/events"
	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/store"
	"go.uber.org/zap"
)

// Engine records meals and answers summary queries for one deployment.
type Engine struct {
	store     *store.Store
	publisher events.Publisher
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time
}

type Option func(*Engine)

func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) {
		if p != nil {
			e.publisher = p
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLocation sets the recording timezone that day boundaries are taken in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:     st,
		publisher: events.Nop{},
		logger:    zap.NewNop(),
		loc:       time.Local,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Store() *store.Store { return e.store }

func (e *Engine) Location() *time.Location { return e.loc }

// ServingSpec says how much of a dish was served. Build it with ByAge, ByPortions or
// ByGrams.
type ServingSpec struct {
	mode  engine.ServingMode
	value float64
}

// ByAge serves the standard weight for the patient's age band at the time of the meal.
func ByAge() ServingSpec { return ServingSpec{mode: engine.ServingModeAgeBand} }

// ByPortions serves multiplier times the whole recipe.
func ByPortions(multiplier float64) ServingSpec {
	return ServingSpec{mode: engine.ServingModePortion, value: multiplier}
}

// ByGrams serves a weighed amount of the dish.
func ByGrams(grams float64) ServingSpec {
	return ServingSpec{mode: engine.ServingModeGrams, value: grams}
}

func (s ServingSpec) Mode() engine.ServingMode { return s.mode }

// validate rejects explicit portions and weights before anything is read.
func (s ServingSpec) validate() error {
	switch s.mode {
	case engine.ServingModePortion:
		_, err := ResolvePortions(s.value)
		return err
	case engine.ServingModeGrams:
		_, err := engine.GramsTarget(s.value, engine.ServingModeGrams)
		return err
	case engine.ServingModeAgeBand:
		return nil
	default:
		return fmt.Errorf("%w: serving is not specified", engine.ErrInvalidInput)
	}
}

type LogMealInput struct {
	PatientID int64
	// Dish is a numeric id or a case-insensitive name.
	Dish     string
	Serving  ServingSpec
	MealSlot string
	// LoggedAt defaults to the engine clock.
	LoggedAt time.Time
	Notes    string
}

// ResolveServingByAge returns the standard serving weight for ageMonths.
func ResolveServingByAge(ctx context.Context, servings ServingStore, ageMonths int) (float64, error) {
	band, err := servings.GetAgeBand(ctx, ageMonths)
	if err != nil {
		return 0, err
	}
	rule, err := servings.GetServingRule(ctx, band.ID)
	if err != nil {
		return 0, err
	}
	return rule.ServingGrams, nil
}

// ResolvePortions builds a portion target. Callers apply engine.DefaultPortions
// themselves when no multiplier was given; 0 is rejected here.
func ResolvePortions(multiplier float64) (engine.ServingTarget, error) {
	return engine.PortionTarget(multiplier)
}

// LogMeal resolves the dish and serving, scales the recipe and appends one entry with the
// resulting snapshot. Composition, densities, bands and the append share one
// transaction; any failure leaves the log unchanged.
func (e *Engine) LogMeal(ctx context.Context, in LogMealInput) (model.MealLogEntry, error) {
	if in.LoggedAt.IsZero() {
		in.LoggedAt = e.now()
	}
	if err := in.Serving.validate(); err != nil {
		return model.MealLogEntry{}, err
	}
	var entry model.MealLogEntry
	err := e.store.InSnapshotTx(ctx, func(tx *store.Store) error {
		var err error
		entry, err = e.logMeal(ctx, tx, in)
		return err
	})
	if err != nil {
		if errors.Is(err, engine.ErrDegenerateState) {
			e.logger.Error("meal log refused on degenerate recipe",
				zap.Int64("patient_id", in.PatientID),
				zap.String("dish", in.Dish),
				zap.Error(err),
			)
		}
		return model.MealLogEntry{}, err
	}

	e.logger.Info("meal logged",
		zap.Int64("entry_id", entry.ID),
		zap.String("entry_uid", entry.UID),
		zap.Int64("patient_id", entry.PatientID),
		zap.String("dish", entry.DishName),
		zap.String("serving_mode", entry.ServingMode),
		zap.Float64("serving_grams", entry.ServingGrams),
	)
	e.publishLogged(ctx, entry)
	return entry, nil
}

func (e *Engine) logMeal(ctx context.Context, backend mealBackend, in LogMealInput) (model.MealLogEntry, error) {
	comp, err := resolveComposition(ctx, backend, in.Dish)
	if err != nil {
		return model.MealLogEntry{}, err
	}

	ageMonths, err := backend.GetAgeInMonths(ctx, in.PatientID, in.LoggedAt.In(e.loc))
	if err != nil {
		return model.MealLogEntry{}, err
	}

	slot := ""
	if strings.TrimSpace(in.MealSlot) != "" {
		s, err := backend.GetMealSlot(ctx, normalizeName(in.MealSlot))
		if errors.Is(err, engine.ErrNotFound) {
			return model.MealLogEntry{}, fmt.Errorf("%w: unknown meal slot %q", engine.ErrInvalidInput, in.MealSlot)
		}
		if err != nil {
			return model.MealLogEntry{}, err
		}
		slot = s.Name
	}

	target, err := servingTarget(ctx, backend, in.Serving, ageMonths)
	if err != nil {
		return model.MealLogEntry{}, err
	}

	base, err := computeBaseTotals(ctx, backend, comp)
	if err != nil {
		return model.MealLogEntry{}, err
	}
	consumed, err := engine.Scale(base, target)
	if err != nil {
		return model.MealLogEntry{}, fmt.Errorf("dish %q: %w", comp.DishName, err)
	}

	snapshot, err := engine.EncodeAmounts(consumed.Amounts)
	if err != nil {
		return model.MealLogEntry{}, err
	}
	entry := model.MealLogEntry{
		UID:             uuid.NewString(),
		PatientID:       in.PatientID,
		DishID:          comp.DishID,
		DishName:        comp.DishName,
		LoggedAt:        in.LoggedAt,
		MealSlot:        slot,
		ServingMode:     string(consumed.Mode),
		ServingGrams:    consumed.ServingGrams,
		ScalingFactor:   consumed.ScalingFactor,
		BaseWeightGrams: base.TotalWeightGrams,
		NutrientAmounts: consumed.Amounts,
		SnapshotJSON:    snapshot,
		Notes:           strings.TrimSpace(in.Notes),
		CreatedAt:       e.now(),
	}
	id, err := backend.Append(ctx, entry)
	if err != nil {
		return model.MealLogEntry{}, err
	}
	entry.ID = id
	return entry, nil
}

func servingTarget(ctx context.Context, servings ServingStore, spec ServingSpec, ageMonths int) (engine.ServingTarget, error) {
	switch spec.mode {
	case engine.ServingModeAgeBand:
		grams, err := ResolveServingByAge(ctx, servings, ageMonths)
		if err != nil {
			return engine.ServingTarget{}, err
		}
		return engine.GramsTarget(grams, engine.ServingModeAgeBand)
	case engine.ServingModePortion:
		return ResolvePortions(spec.value)
	case engine.ServingModeGrams:
		return engine.GramsTarget(spec.value, engine.ServingModeGrams)
	default:
		return engine.ServingTarget{}, fmt.Errorf("%w: serving is not specified", engine.ErrInvalidInput)
	}
}

// DeleteMeal soft-deletes an entry; summaries stop counting it.
func (e *Engine) DeleteMeal(ctx context.Context, entryID int64) error {
	if err := e.store.SoftDeleteMealLogEntry(ctx, entryID, e.now()); err != nil {
		return err
	}
	e.logger.Info("meal log entry deleted", zap.Int64("entry_id", entryID))
	return nil
}

func (e *Engine) ListMeals(ctx context.Context, patientID int64, date time.Time) ([]model.MealLogEntry, error) {
	if _, err := e.store.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}
	from, to := dayRange(date, e.loc)
	return e.store.QueryByPatientAndDate(ctx, patientID, from, to)
}

func (e *Engine) publishLogged(ctx context.Context, entry model.MealLogEntry) {
	if _, ok := e.publisher.(events.Nop); ok {
		return
	}
	event := events.MealLogged{
		EntryID:     entry.ID,
		EntryUID:    entry.UID,
		PatientID:   entry.PatientID,
		DishID:      entry.DishID,
		DishName:    entry.DishName,
		LoggedAt:    entry.LoggedAt,
		MealSlot:    entry.MealSlot,
		ServingMode: entry.ServingMode,
		Amounts:     entry.NutrientAmounts,
	}
	status, err := e.GetDailyStatus(ctx, entry.PatientID, entry.LoggedAt)
	if err != nil {
		e.logger.Warn("daily status for meal event", zap.Int64("entry_id", entry.ID), zap.Error(err))
	} else {
		event.Deficits = status.Deficits()
	}
	if err := e.publisher.PublishMealLogged(ctx, event); err != nil {
		e.logger.Error("publish meal event", zap.String("entry_uid", entry.UID), zap.Error(err))
	}
}

// dayRange returns the half-open instant range of the calendar day of t in loc.
func dayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := t.In(loc).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1)
}
