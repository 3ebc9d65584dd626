package db_test

import (
	"testing"

	"github.com/saadjs/nutrilog/internal/db"
)

func TestRebind(t *testing.T) {
	t.Parallel()

	query := `SELECT id FROM nutrients WHERE lower(name) = lower(?) AND id > ?`
	if got := db.SQLite.Rebind(query); got != query {
		t.Fatalf("expected sqlite query unchanged, got %q", got)
	}
	want := `SELECT id FROM nutrients WHERE lower(name) = lower($1) AND id > $2`
	if got := db.Postgres.Rebind(query); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestParseDialect(t *testing.T) {
	t.Parallel()

	cases := map[string]db.Dialect{"": db.SQLite, "SQLite": db.SQLite, "postgresql": db.Postgres, "pg": db.Postgres}
	for in, want := range cases {
		got, err := db.ParseDialect(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q, got %q", in, want, got)
		}
	}
	if _, err := db.ParseDialect("mysql"); err == nil {
		t.Fatalf("expected mysql to be rejected")
	}
}
