package plan

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ellarun/ellarun/internal/errors"
	"github.com/ellarun/ellarun/internal/sqlite"
	"github.com/google/uuid"
)

// sqlitePlanRepository persists generated plans for progress history.
type sqlitePlanRepository struct {
	baseRepository
}

func newSQLitePlanRepository(db *sqlite.Database, logger *slog.Logger) *sqlitePlanRepository {
	return &sqlitePlanRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Create stores the plan and returns the persisted plan's identifier.
func (r *sqlitePlanRepository) Create(ctx context.Context, p Plan, profileName string) (string, error) {
	document, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "marshal plan document")
	}

	id := uuid.NewString()
	if _, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO plans (id, profile_name, source, document, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		id,
		normalizeProfileName(profileName),
		string(p.Source),
		string(document),
		formatTimestamp(time.Now()),
	); err != nil {
		return "", errors.Wrap(err, "insert plan", slog.String("profile", profileName))
	}

	return id, nil
}

// ListRecent returns the most recently generated plans for a profile, newest
// first.
func (r *sqlitePlanRepository) ListRecent(ctx context.Context, profileName string, limit int) ([]StoredPlan, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, profile_name, source, document, created_at
		FROM plans
		WHERE profile_name = ?
		ORDER BY created_at DESC
		LIMIT ?`, normalizeProfileName(profileName), limit)
	if err != nil {
		return nil, errors.Wrap(err, "query recent plans", slog.String("profile", profileName))
	}
	defer rows.Close()

	var stored []StoredPlan
	for rows.Next() {
		var (
			sp         StoredPlan
			source     string
			document   string
			createdStr string
		)
		if err = rows.Scan(&sp.ID, &sp.ProfileName, &source, &document, &createdStr); err != nil {
			return nil, errors.Wrap(err, "scan plan row")
		}
		sp.Source = Source(source)
		if sp.CreatedAt, err = parseTimestamp(createdStr); err != nil {
			return nil, errors.Wrap(err, "parse plan created_at")
		}
		if err = json.Unmarshal([]byte(document), &sp.Plan); err != nil {
			return nil, errors.Wrap(err, "unmarshal plan document", slog.String("id", sp.ID))
		}
		stored = append(stored, sp)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate plan rows")
	}

	return stored, nil
}
