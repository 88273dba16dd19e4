// Package postgres implements the model and result stores on PostgreSQL
// through the pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/thermogain/thermogain/internal/projection"
	"github.com/thermogain/thermogain/internal/store"
	"github.com/thermogain/thermogain/pkg/energy"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens a connection pool and checks it is reachable.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres: empty dsn")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema files in name order. Every statement is
// idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("postgres migrate: nil db")
	}
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}

// ModelStore persists price evolution models in energy_models.
type ModelStore struct {
	db *sql.DB
}

// NewModelStore constructs a model store.
func NewModelStore(db *sql.DB) *ModelStore {
	return &ModelStore{db: db}
}

// LoadModel returns the model of an energy type.
func (r *ModelStore) LoadModel(ctx context.Context, e energy.Type) (store.StoredModel, error) {
	if r == nil || r.db == nil {
		return store.StoredModel{}, errors.New("model store: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT energy_type, recent_rate, equilibrium_rate, transition_years, current_price, updated_at
FROM energy_models
WHERE energy_type = $1`, string(e))

	m, err := scanModel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.StoredModel{}, store.ErrNotFound
	}
	return m, err
}

// SaveModel inserts or replaces the model of an energy type.
func (r *ModelStore) SaveModel(ctx context.Context, m store.StoredModel) error {
	if r == nil || r.db == nil {
		return errors.New("model store: nil db")
	}
	if m.Model.Energy == "" {
		return errors.New("model store: empty energy type")
	}
	updatedAt := m.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO energy_models (energy_type, recent_rate, equilibrium_rate, transition_years, current_price, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (energy_type) DO UPDATE SET
	recent_rate = EXCLUDED.recent_rate,
	equilibrium_rate = EXCLUDED.equilibrium_rate,
	transition_years = EXCLUDED.transition_years,
	current_price = EXCLUDED.current_price,
	updated_at = EXCLUDED.updated_at`,
		string(m.Model.Energy), m.Model.RecentRate, m.Model.EquilibriumRate,
		m.Model.Transition(), m.Model.CurrentPrice, updatedAt.UTC())
	return err
}

// ListModels returns every stored model ordered by energy type.
func (r *ModelStore) ListModels(ctx context.Context) ([]store.StoredModel, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("model store: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT energy_type, recent_rate, equilibrium_rate, transition_years, current_price, updated_at
FROM energy_models
ORDER BY energy_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.StoredModel
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanModel(row scanner) (store.StoredModel, error) {
	var (
		energyType string
		m          store.StoredModel
	)
	if err := row.Scan(&energyType, &m.Model.RecentRate, &m.Model.EquilibriumRate,
		&m.Model.TransitionYears, &m.Model.CurrentPrice, &m.UpdatedAt); err != nil {
		return store.StoredModel{}, err
	}
	m.Model.Energy = energy.Type(energyType)
	return m, nil
}

// ResultStore persists calculation results in calculation_results.
type ResultStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewResultStore constructs a result store.
func NewResultStore(db *sql.DB) *ResultStore {
	return &ResultStore{db: db, now: time.Now}
}

// SaveResults stores a calculation under a fresh identifier.
func (r *ResultStore) SaveResults(ctx context.Context, results *projection.Results) (store.ResultRecord, error) {
	if r == nil || r.db == nil {
		return store.ResultRecord{}, errors.New("result store: nil db")
	}
	payload, err := store.EncodeResults(results)
	if err != nil {
		return store.ResultRecord{}, err
	}
	rec := store.ResultRecord{
		ID:        uuid.NewString(),
		ProjectID: results.ProjectID,
		CreatedAt: r.now().UTC(),
		Results:   results,
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return store.ResultRecord{}, err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO calculation_results (id, project_id, created_at, payload)
VALUES ($1, $2, $3, $4)`, rec.ID, rec.ProjectID, rec.CreatedAt, payload); err != nil {
		_ = tx.Rollback()
		return store.ResultRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return store.ResultRecord{}, err
	}
	return rec, nil
}

// LatestResults returns the most recent calculation of a project.
func (r *ResultStore) LatestResults(ctx context.Context, projectID string) (store.ResultRecord, error) {
	if r == nil || r.db == nil {
		return store.ResultRecord{}, errors.New("result store: nil db")
	}
	var (
		rec     store.ResultRecord
		payload []byte
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id::text, project_id, created_at, payload
FROM calculation_results
WHERE project_id = $1
ORDER BY created_at DESC
LIMIT 1`, projectID).Scan(&rec.ID, &rec.ProjectID, &rec.CreatedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ResultRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.ResultRecord{}, err
	}
	rec.Results, err = store.DecodeResults(payload)
	if err != nil {
		return store.ResultRecord{}, err
	}
	return rec, nil
}

var (
	_ store.ModelStore  = (*ModelStore)(nil)
	_ store.ResultStore = (*ResultStore)(nil)
)
