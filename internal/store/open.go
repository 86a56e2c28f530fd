package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
)

type Options struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
	RedisAddr   string
	MongoURI    string
	MongoDB     string
}

// Open builds the store chosen by opts.Driver. Durable backends are wrapped in Resilient.
// When a durable backend cannot be reached at startup the ephemeral store is returned
// instead, and the session runs without persistence.
func Open(ctx context.Context, opts Options, log *zap.Logger) (Store, func() error, error) {
	if log == nil {
		log = zap.NewNop()
	}
	noop := func() error { return nil }

	var (
		durable Store
		closer  func() error
		err     error
	)

	switch opts.Driver {
	case DriverMemory, "":
		log.Info("using ephemeral store")
		return NewMemory(), noop, nil
	case DriverSQLite:
		durable, closer, err = openSQL(func() (*SQL, error) { return OpenSQLite(opts.SQLitePath) })
	case DriverPostgres:
		durable, closer, err = openSQL(func() (*SQL, error) { return OpenPostgres(opts.DatabaseURL) })
	case DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		rs := NewRedis(client, "storefront")
		if err = rs.Ping(ctx); err != nil {
			_ = rs.Close()
		} else {
			durable, closer = rs, rs.Close
		}
	case DriverMongo:
		db, errConn := ConnectMongoDB(ctx, opts.MongoURI, opts.MongoDB)
		if errConn != nil {
			err = errConn
		} else {
			ms := NewMongo(db)
			durable, closer = ms, ms.Close
		}
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}

	if err != nil {
		log.Warn("durable store unavailable, falling back to ephemeral store",
			zap.String("driver", opts.Driver), zap.Error(err))
		return NewMemory(), noop, nil
	}

	log.Info("using durable store", zap.String("driver", opts.Driver))
	return NewResilient(durable, log), closer, nil
}

func openSQL(open func() (*SQL, error)) (Store, func() error, error) {
	s, err := open()
	if err != nil {
		return nil, nil, err
	}
	if err := s.RunMigrations(); err != nil {
		s.Close()
		return nil, nil, err
	}
	return s, s.Close, nil
}
