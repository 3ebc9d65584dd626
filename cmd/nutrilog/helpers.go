package nutrilog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/saadjs/nutrilog/internal/app"
	"github.com/saadjs/nutrilog/internal/config"
	"github.com/saadjs/nutrilog/internal/db"
	"github.com/saadjs/nutrilog/internal/events"
	"github.com/saadjs/nutrilog/internal/logging"
	"github.com/saadjs/nutrilog/internal/service"
	"github.com/saadjs/nutrilog/internal/store"
)

const serviceName = "nutrilog"

// runtime is everything a command needs, opened once per invocation.
type runtime struct {
	ctx     context.Context
	cfg     config.Config
	logger  *zap.Logger
	dialect db.Dialect
	// dbPath is the SQLite file; empty for PostgreSQL.
	dbPath string
	store  *store.Store
	engine *service.Engine
}

func withRuntime(ctx context.Context, run func(*runtime) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if strings.TrimSpace(logLevel) != "" {
		level = logLevel
	}
	logger, err := logging.NewLogger(level, cfg.Log.Format, serviceName)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	dialect, target, err := resolveDatabase(cfg.Database)
	if err != nil {
		return err
	}
	sqldb, err := db.OpenDialect(dialect, target)
	if err != nil {
		return err
	}
	defer sqldb.Close()
	if err := db.ApplyMigrations(sqldb, dialect); err != nil {
		return err
	}

	st := store.New(sqldb, dialect)
	override := strings.TrimSpace(tzName)
	if override == "" {
		override = cfg.Timezone
	}
	loc, err := service.RecordingLocation(ctx, st, override)
	if err != nil {
		return err
	}

	opts := []service.Option{service.WithLogger(logger), service.WithLocation(loc)}
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		publisher := events.NewRedisPublisher(client, cfg.Redis.Stream, 10000, logger)
		defer publisher.Close()
		opts = append(opts, service.WithPublisher(publisher))
	}

	logger.Debug("runtime ready", zap.String("driver", string(dialect)), zap.String("timezone", loc.String()))
	rt := &runtime{
		ctx:     ctx,
		cfg:     cfg,
		logger:  logger,
		dialect: dialect,
		store:   st,
		engine:  service.NewEngine(st, opts...),
	}
	if dialect == db.SQLite {
		rt.dbPath = target
	}
	return run(rt)
}

// resolveDatabase picks the dialect and its open target: --driver and --db override the
// environment; SQLite falls back to the per-user default path.
func resolveDatabase(cfg config.DatabaseConfig) (db.Dialect, string, error) {
	driver := cfg.Driver
	if strings.TrimSpace(dbDriver) != "" {
		driver = dbDriver
	}
	dialect, err := db.ParseDialect(driver)
	if err != nil {
		return "", "", err
	}
	if dialect == db.Postgres {
		if strings.TrimSpace(dbPath) != "" {
			return dialect, dbPath, nil
		}
		return dialect, cfg.PostgresDSN(), nil
	}

	path := strings.TrimSpace(dbPath)
	if path == "" {
		path = cfg.Path
	}
	if path == "" {
		if path, err = app.DefaultDBPath(); err != nil {
			return "", "", err
		}
	}
	if err := app.EnsureDBDir(path); err != nil {
		return "", "", err
	}
	return dialect, path, nil
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

// parseDateTimeOrNow reads --date/--time in loc. Empty date and time mean now.
func parseDateTimeOrNow(date, timeStr string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if date == "" && timeStr == "" {
		return time.Now().In(loc), nil
	}
	if date == "" {
		return time.Time{}, fmt.Errorf("--date is required when --time is set")
	}
	if timeStr == "" {
		timeStr = "12:00"
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date/--time (expected YYYY-MM-DD and HH:MM)")
	}
	return t, nil
}

// parseDateOrToday reads a YYYY-MM-DD day in loc; empty means today.
func parseDateOrToday(date string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Now().In(loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	return t, nil
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// nutrientLabels maps nutrient id -> "Name (unit)" for table output.
func nutrientLabels(rt *runtime) (map[int64]string, []int64, error) {
	nutrients, err := rt.store.ListNutrients(rt.ctx)
	if err != nil {
		return nil, nil, err
	}
	labels := make(map[int64]string, len(nutrients))
	ids := make([]int64, 0, len(nutrients))
	for _, n := range nutrients {
		labels[n.ID] = fmt.Sprintf("%s (%s)", n.Name, n.Unit)
		ids = append(ids, n.ID)
	}
	return labels, ids, nil
}
