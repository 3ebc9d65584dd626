package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/store"
)

// ConfigRecordingTimezone names the IANA zone day boundaries are taken in.
const ConfigRecordingTimezone = "recording_timezone"

var configValidators = map[string]func(string) error{
	ConfigRecordingTimezone: func(v string) error {
		_, err := time.LoadLocation(v)
		return err
	},
}

func SetConfig(ctx context.Context, st *store.Store, key, value string) error {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	validate, ok := configValidators[key]
	if !ok {
		return fmt.Errorf("%w: unknown config key %q", engine.ErrInvalidInput, key)
	}
	if err := validate(value); err != nil {
		return fmt.Errorf("%w: %s=%q: %v", engine.ErrInvalidInput, key, value, err)
	}
	return st.SetConfig(ctx, key, value)
}

func GetConfig(ctx context.Context, st *store.Store, key string) (string, bool, error) {
	return st.GetConfig(ctx, strings.TrimSpace(key))
}

func ListConfig(ctx context.Context, st *store.Store) (map[string]string, error) {
	return st.ListConfig(ctx)
}

func UnsetConfig(ctx context.Context, st *store.Store, key string) (bool, error) {
	return st.DeleteConfig(ctx, strings.TrimSpace(key))
}

// RecordingLocation resolves the recording timezone: override (flag or environment),
// then the stored config key, then the local zone.
func RecordingLocation(ctx context.Context, st *store.Store, override string) (*time.Location, error) {
	name := strings.TrimSpace(override)
	if name == "" {
		stored, ok, err := st.GetConfig(ctx, ConfigRecordingTimezone)
		if err != nil {
			return nil, err
		}
		if ok {
			name = stored
		}
	}
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load recording timezone %q: %w", name, err)
	}
	return loc, nil
}
