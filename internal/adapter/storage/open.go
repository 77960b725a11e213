package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/rl1809/warehouse-inventory/internal/port"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open connects the named backend (mysql, postgres, sqlite or memory) and
// creates its schema. The returned closer releases the connection pool.
func Open(ctx context.Context, driver, dsn string) (port.DatabaseRepository, io.Closer, error) {
	switch driver {
	case "memory":
		return NewMemoryAdapter(), closerFunc(func() error { return nil }), nil

	case "mysql":
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect mysql: %w", err)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping mysql: %w", err)
		}
		adapter := NewMySQLAdapter(db)
		if err := adapter.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return adapter, db, nil

	default:
		gdb, err := OpenGorm(driver, dsn)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, err
		}
		adapter := NewGormAdapter(gdb)
		if err := adapter.Migrate(ctx); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return adapter, sqlDB, nil
	}
}
