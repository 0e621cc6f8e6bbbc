package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/pressly/goose/v3"

	"github.com/sunkissed-southern/storefront/pkg/config"
)

// DefaultDir is where new migrations are authored on disk.
const DefaultDir = "pkg/migrate/migrations"

// EmbeddedDir is the path of the migrations inside Embedded.
const EmbeddedDir = "migrations"

//go:embed migrations/*.sql
var Embedded embed.FS

// Source selects where goose reads migrations from. A nil FS means the OS
// filesystem.
type Source struct {
	FS  fs.FS
	Dir string
}

// EmbeddedSource returns the migrations compiled into the binary.
func EmbeddedSource() Source {
	return Source{FS: Embedded, Dir: EmbeddedDir}
}

// DirSource reads migrations from dir on disk.
func DirSource(dir string) Source {
	return Source{Dir: dir}
}

// Dialect maps a configured DB driver onto the goose dialect name.
func Dialect(driver string) (string, error) {
	switch driver {
	case config.DBDriverPostgres:
		return "postgres", nil
	case config.DBDriverSQLite, "":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", driver)
	}
}

func prepare(src Source, driver string) error {
	if src.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(src.FS)
	return nil
}

// Run executes a standard goose command that requires a DB connection.
func Run(ctx context.Context, db *sql.DB, driver string, src Source, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if err := prepare(src, driver); err != nil {
		return err
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, src.Dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, driver string, src Source) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if err := prepare(src, driver); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, src.Dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver string, src Source, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	if err := prepare(src, driver); err != nil {
		return err
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, src.Dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil
	default:
		if err := goose.DownToContext(ctx, db, src.Dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}
