package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadjs/nutrilog/internal/db"
)

// recordingConnector hands out connections that only remember the options of the last
// BeginTx call.
type recordingConnector struct {
	opts *driver.TxOptions
}

func (c *recordingConnector) Connect(context.Context) (driver.Conn, error) {
	return &recordingConn{connector: c}, nil
}

func (c *recordingConnector) Driver() driver.Driver { return nil }

type recordingConn struct {
	connector *recordingConnector
}

func (c *recordingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("not supported")
}

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *recordingConn) BeginTx(_ context.Context, opts driver.TxOptions) (driver.Tx, error) {
	c.connector.opts = &opts
	return recordingTx{}, nil
}

type recordingTx struct{}

func (recordingTx) Commit() error   { return nil }
func (recordingTx) Rollback() error { return nil }

func TestSnapshotTxOptions(t *testing.T) {
	opts := snapshotTxOptions(db.Postgres)
	require.NotNil(t, opts)
	assert.Equal(t, sql.LevelRepeatableRead, opts.Isolation)
	assert.False(t, opts.ReadOnly)

	assert.Nil(t, snapshotTxOptions(db.SQLite))
}

func TestInSnapshotTxBeginsRepeatableReadOnPostgres(t *testing.T) {
	connector := &recordingConnector{}
	conn := sql.OpenDB(connector)
	defer conn.Close()

	st := New(conn, db.Postgres)
	require.NoError(t, st.InSnapshotTx(context.Background(), func(*Store) error { return nil }))
	require.NotNil(t, connector.opts)
	assert.Equal(t, driver.IsolationLevel(sql.LevelRepeatableRead), connector.opts.Isolation)

	require.NoError(t, st.InTx(context.Background(), func(*Store) error { return nil }))
	assert.Equal(t, driver.IsolationLevel(sql.LevelDefault), connector.opts.Isolation)
}
