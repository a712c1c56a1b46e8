package imagestore

import (
	"context"
	"database/sql"

	"github.com/jmgilman/go/errors"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config selects the database backing the store.
type Config struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// DefaultConfig stores images in a sqlite file in the working directory.
func DefaultConfig() Config {
	return Config{
		Driver: DriverSQLite,
		DSN:    "file:charlist.db?cache=shared&_busy_timeout=5000",
	}
}

// Open connects to the configured database and wraps it with the matching bun dialect.
// Unknown drivers are rejected before any connection is opened.
func Open(cfg Config) (*bun.DB, error) {
	var dialect schema.Dialect
	switch cfg.Driver {
	case DriverSQLite:
		dialect = sqlitedialect.New()
	case DriverPostgres:
		dialect = pgdialect.New()
	default:
		return nil, errors.WithContext(
			errors.Newf(errors.CodeInvalidConfig, "unsupported store driver %q", cfg.Driver),
			"driver", cfg.Driver,
		)
	}

	sqldb, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeDatabase, "open %s database", cfg.Driver)
	}
	if cfg.Driver == DriverSQLite {
		// a single connection keeps :memory: databases alive
		sqldb.SetMaxOpenConns(1)
	}
	return bun.NewDB(sqldb, dialect), nil
}

// CreateSchema creates the images table and its URL index when missing.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().
		Model((*ImageRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "create images table")
	}

	if _, err := db.NewCreateIndex().
		Model((*ImageRecord)(nil)).
		Index("images_image_url_idx").
		Column("image_url").
		IfNotExists().
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "create images url index")
	}

	return nil
}
