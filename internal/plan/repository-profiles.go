package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/ellarun/ellarun/internal/errors"
	"github.com/ellarun/ellarun/internal/sqlite"
)

// sqliteProfileRepository stores profile documents keyed by profile name.
type sqliteProfileRepository struct {
	baseRepository
}

func newSQLiteProfileRepository(db *sqlite.Database, logger *slog.Logger) *sqliteProfileRepository {
	return &sqliteProfileRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Get retrieves a profile by name. Returns ErrNotFound when no profile with
// that name has been saved.
func (r *sqliteProfileRepository) Get(ctx context.Context, name string) (Profile, error) {
	var document string
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT document
		FROM profiles
		WHERE name = ?`, normalizeProfileName(name)).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, errors.Wrap(ErrNotFound, "profile", slog.String("name", name))
	}
	if err != nil {
		return Profile{}, errors.Wrap(err, "query profile", slog.String("name", name))
	}

	var profile Profile
	if err = json.Unmarshal([]byte(document), &profile); err != nil {
		return Profile{}, errors.Wrap(err, "unmarshal profile document", slog.String("name", name))
	}

	return profile, nil
}

// Put upserts the profile document.
func (r *sqliteProfileRepository) Put(ctx context.Context, profile Profile) error {
	document, err := json.Marshal(profile)
	if err != nil {
		return errors.Wrap(err, "marshal profile document")
	}

	if _, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO profiles (name, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at`,
		normalizeProfileName(profile.Name),
		string(document),
		formatTimestamp(time.Now()),
	); err != nil {
		return errors.Wrap(err, "upsert profile", slog.String("name", profile.Name))
	}

	return nil
}

// List returns every stored profile. Used by cache warming.
func (r *sqliteProfileRepository) List(ctx context.Context) ([]Profile, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, "SELECT document FROM profiles ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "query profiles")
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var document string
		if err = rows.Scan(&document); err != nil {
			return nil, errors.Wrap(err, "scan profile row")
		}
		var profile Profile
		if err = json.Unmarshal([]byte(document), &profile); err != nil {
			return nil, errors.Wrap(err, "unmarshal profile document")
		}
		profiles = append(profiles, profile)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate profile rows")
	}

	return profiles, nil
}

// normalizeProfileName makes profile lookups case-insensitive.
func normalizeProfileName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
