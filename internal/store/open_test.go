package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	s, closer, err := Open(context.Background(), Options{Driver: DriverMemory}, nil)
	require.NoError(t, err)
	defer closer()

	assert.IsType(t, &Memory{}, s)
}

func TestOpen_SQLiteIsWrapped(t *testing.T) {
	opts := Options{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "kv.db")}

	s, closer, err := Open(context.Background(), opts, nil)
	require.NoError(t, err)
	defer closer()

	assert.IsType(t, &Resilient{}, s)
	runStoreContract(t, s)
}

func TestOpen_UnreachableRedisFallsBackToMemory(t *testing.T) {
	opts := Options{Driver: DriverRedis, RedisAddr: "127.0.0.1:1"}

	s, closer, err := Open(context.Background(), opts, nil)
	require.NoError(t, err)
	defer closer()

	assert.IsType(t, &Memory{}, s)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), Options{Driver: "etcd"}, nil)
	assert.ErrorContains(t, err, "unknown store driver")
}
