package migrations

import (
	"context"
	"database/sql"
	"embed"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// goose needs a directory to scan; the package sources stand in for it and
// every numbered file registers itself in init.
//
//go:embed *.go
var sources embed.FS

const dir = "."

func prepare() error {
	goose.SetBaseFS(sources)
	return goose.SetDialect("postgres")
}

// Open opens a database/sql handle on the lib/pq driver
func Open(dsn string) (*sql.DB, error) {
	return goose.OpenDBWithDriver("postgres", dsn)
}

// Up applies every pending migration
func Up(ctx context.Context, db *sql.DB) error {
	if err := prepare(); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, dir)
}

// Down rolls back the latest migration
func Down(ctx context.Context, db *sql.DB) error {
	if err := prepare(); err != nil {
		return err
	}
	return goose.DownContext(ctx, db, dir)
}

// Status logs the state of every migration
func Status(ctx context.Context, db *sql.DB) error {
	if err := prepare(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, dir)
}

// Version returns the current schema version
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	if err := prepare(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}
