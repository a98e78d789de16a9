// Package migrate applies embedded goose migrations at service start-up.
package migrate

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
)

// goose keeps its base FS, dialect and table name in package state.
var mu sync.Mutex

// Source describes one set of migrations.
type Source struct {
	FS  fs.FS
	Dir string
	// Table is the goose version table; services sharing a database use distinct tables.
	Table string
}

type gooseLogger struct {
	l *slog.Logger
}

func (g *gooseLogger) Fatalf(format string, v ...interface{}) {
	g.l.Error("goose fatal", slog.String("msg", fmt.Sprintf(format, v...)))
	panic(fmt.Sprintf(format, v...))
}

func (g *gooseLogger) Printf(format string, v ...interface{}) {
	g.l.Info("goose info", slog.String("msg", fmt.Sprintf(format, v...)))
}

// Up applies every pending migration of src against db.
func Up(db *sql.DB, dialect string, src Source, logger *slog.Logger) error {
	mu.Lock()
	defer mu.Unlock()

	goose.SetLogger(&gooseLogger{l: logger})
	goose.SetBaseFS(src.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if src.Table != "" {
		goose.SetTableName(src.Table)
	}

	if err := goose.Up(db, src.Dir); err != nil {
		return fmt.Errorf("failed to apply migrations from %s: %w", src.Dir, err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	logger.Info("Database migrations applied",
		slog.String("table", src.Table),
		slog.Int64("version", version),
	)
	return nil
}
