package plan

import (
	"log/slog"
	"time"

	"github.com/ellarun/ellarun/internal/errors"
	"github.com/ellarun/ellarun/internal/sqlite"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.NewSentinel("not found")

const timestampFormat = "2006-01-02T15:04:05.000Z"

// baseRepository carries the dependencies shared by all repositories.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{
		db:     db,
		logger: logger,
	}
}

// repository bundles the document stores used by the service.
type repository struct {
	profiles *sqliteProfileRepository
	cache    *sqliteCacheRepository
	plans    *sqlitePlanRepository
}

func newRepository(db *sqlite.Database, logger *slog.Logger, cacheTTL time.Duration) *repository {
	return &repository{
		profiles: newSQLiteProfileRepository(db, logger),
		cache:    newSQLiteCacheRepository(db, logger, cacheTTL),
		plans:    newSQLitePlanRepository(db, logger),
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, s)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "parse timestamp", slog.String("value", s))
	}
	return t, nil
}
