package testkit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
)

// Suite owns the containers and the connections opened on them.
type Suite struct {
	mu    sync.Mutex
	cfg   Config
	pg    *PostgresModule
	redis *RedisModule
	db    *sql.DB
	rdb   *redis.Client
}

var (
	globalSuite *Suite
	globalOnce  sync.Once
)

// Global returns the singleton Suite instance.
func Global() *Suite {
	globalOnce.Do(func() {
		globalSuite = &Suite{cfg: LoadConfig()}
	})
	return globalSuite
}

// Setup starts Postgres and Redis (or uses external overrides), migrates the
// database and opens a client on each.
func (s *Suite) Setup(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return errors.New("suite already set up; call Shutdown first")
	}
	defer func() {
		if err != nil {
			s.teardown(ctx)
		}
	}()

	if s.pg, err = StartPostgres(ctx, &s.cfg); err != nil {
		return fmt.Errorf("setup postgres: %w", err)
	}
	if s.redis, err = StartRedis(ctx, &s.cfg); err != nil {
		return fmt.Errorf("setup redis: %w", err)
	}
	if s.db, err = OpenMigratedDB(ctx, s.pg.DSN()); err != nil {
		return fmt.Errorf("setup database: %w", err)
	}

	s.rdb = redis.NewClient(&redis.Options{Addr: s.redis.Addr()})
	if err = s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Shutdown closes the clients and terminates the containers unless KEEP_CONTAINERS is set.
func (s *Suite) Shutdown(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardown(ctx)
}

func (s *Suite) teardown(ctx context.Context) {
	if s.rdb != nil {
		_ = s.rdb.Close()
		s.rdb = nil
	}
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}

	if s.cfg.KeepContainers {
		fmt.Println("KEEP_CONTAINERS=true, leaving containers running")
		if s.pg != nil {
			fmt.Println("  Postgres DSN:", s.pg.DSN())
		}
		if s.redis != nil {
			fmt.Println("  Redis Addr:", s.redis.Addr())
		}
	} else {
		if s.redis != nil {
			if err := s.redis.Terminate(ctx); err != nil {
				fmt.Println("warning: failed to terminate redis container:", err)
			}
		}
		if s.pg != nil {
			if err := s.pg.Terminate(ctx); err != nil {
				fmt.Println("warning: failed to terminate postgres container:", err)
			}
		}
	}
	s.pg, s.redis = nil, nil
}

// DB returns the migrated test database.
func (s *Suite) DB() *sql.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

// Redis returns a client on the test Redis instance.
func (s *Suite) Redis() *redis.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rdb
}

// RedisAddr returns the host:port address for the test Redis instance.
func (s *Suite) RedisAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.redis == nil {
		return ""
	}
	return s.redis.Addr()
}

// Run sets up the suite, executes the tests, then shuts down. Intended for use in TestMain.
func (s *Suite) Run(m *testing.M) {
	ctx := context.Background()

	if err := s.Setup(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "integration test setup failed: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	s.Shutdown(ctx)
	os.Exit(code)
}

// Run is a package-level convenience that delegates to Global().Run.
func Run(m *testing.M) {
	Global().Run(m)
}
