package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/saadjs/nutrilog/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NUTRILOG_DB_DRIVER", "")
	t.Setenv("NUTRILOG_REDIS_ADDR", "")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", cfg.Database.Driver)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("expected redis disabled without address")
	}
	if cfg.Redis.Stream != "nutrilog:meal-events" {
		t.Fatalf("unexpected default stream %q", cfg.Redis.Stream)
	}
}

func TestLoadEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "NUTRILOG_DB_DRIVER=postgres\nNUTRILOG_DB_HOST=db.internal\nNUTRILOG_DB_PORT=6543\nNUTRILOG_TIMEZONE=Europe/Paris\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("NUTRILOG_TIMEZONE", "America/New_York")
	// godotenv only fills unset variables, so clear what the file should provide.
	for _, key := range []string{"NUTRILOG_DB_DRIVER", "NUTRILOG_DB_HOST", "NUTRILOG_DB_PORT"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.Host != "db.internal" || cfg.Database.Port != 6543 {
		t.Fatalf("expected database settings from env file, got %+v", cfg.Database)
	}
	if cfg.Timezone != "America/New_York" {
		t.Fatalf("expected environment to win over env file, got %q", cfg.Timezone)
	}
	want := "host=db.internal port=6543 user=postgres password= dbname=nutrilog sslmode=disable"
	if got := cfg.Database.PostgresDSN(); got != want {
		t.Fatalf("expected dsn %q, got %q", want, got)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("NUTRILOG_DB_PORT", "five")
	if _, err := config.Load(""); err == nil {
		t.Fatalf("expected error for non-numeric port")
	}
}
