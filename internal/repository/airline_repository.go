package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/ndc-feature-tracker/internal/model"
)

const airlineColumns = "id, name, codes, provider, status, created_at, updated_at"

// AirlineUpdate carries the fields of a partial update.  Nil fields are left
// unchanged.
type AirlineUpdate struct {
	Name     *string
	Codes    *string
	Provider *string
	Status   *model.AirlineStatus
}

func (u AirlineUpdate) empty() bool {
	return u.Name == nil && u.Codes == nil && u.Provider == nil && u.Status == nil
}

// AirlineRepo encapsulates queries on the airlines table.
type AirlineRepo struct {
	db *sql.DB
}

func NewAirlineRepo(db *sql.DB) *AirlineRepo { return &AirlineRepo{db: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAirline(s rowScanner, a *model.Airline) error {
	return s.Scan(&a.ID, &a.Name, &a.Codes, &a.Provider, &a.Status, &a.CreatedAt, &a.UpdatedAt)
}

// List returns every airline ordered by name.
func (r *AirlineRepo) List(ctx context.Context) ([]model.Airline, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+airlineColumns+" FROM airlines ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list airlines: %w", err)
	}
	defer rows.Close()

	out := make([]model.Airline, 0)
	for rows.Next() {
		var a model.Airline
		if err := scanAirline(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByID returns ErrAirlineNotFound when no row matches.
func (r *AirlineRepo) GetByID(ctx context.Context, id uint64) (*model.Airline, error) {
	var a model.Airline
	err := scanAirline(r.db.QueryRowContext(ctx, "SELECT "+airlineColumns+" FROM airlines WHERE id = ?", id), &a)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAirlineNotFound
		}
		return nil, err
	}
	return &a, nil
}

// WithImplementations returns the airline plus its implementations joined to
// feature details, ordered by feature category then name.
func (r *AirlineRepo) WithImplementations(ctx context.Context, id uint64) (*model.AirlineWithImplementations, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	const q = `SELECT i.id, i.airline_id, i.feature_id, i.value, i.notes, i.created_at, i.updated_at,
	                  f.name, f.category, f.description
	           FROM implementations i
	           JOIN features f ON f.id = i.feature_id
	           WHERE i.airline_id = ?
	           ORDER BY f.category, f.name`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("airline implementations: %w", err)
	}
	defer rows.Close()

	out := &model.AirlineWithImplementations{Airline: *a, Implementations: make([]model.AirlineImplementation, 0)}
	for rows.Next() {
		var ai model.AirlineImplementation
		if err := rows.Scan(&ai.ID, &ai.AirlineID, &ai.FeatureID, &ai.Value, &ai.Notes, &ai.CreatedAt, &ai.UpdatedAt,
			&ai.FeatureName, &ai.FeatureCategory, &ai.FeatureDescription); err != nil {
			return nil, err
		}
		out.Implementations = append(out.Implementations, ai)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts the airline and returns the stored row.
func (r *AirlineRepo) Create(ctx context.Context, a model.Airline) (*model.Airline, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO airlines (name, codes, provider, status) VALUES (?, ?, ?, ?)",
		a.Name, a.Codes, a.Provider, a.Status)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update applies the non-nil fields of u and returns the stored row.
func (r *AirlineRepo) Update(ctx context.Context, id uint64, u AirlineUpdate) (*model.Airline, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.empty() {
		return current, nil
	}

	b := sq.Update("airlines")
	if u.Name != nil {
		b = b.Set("name", *u.Name)
	}
	if u.Codes != nil {
		b = b.Set("codes", *u.Codes)
	}
	if u.Provider != nil {
		b = b.Set("provider", *u.Provider)
	}
	if u.Status != nil {
		b = b.Set("status", *u.Status)
	}
	q, args, err := b.Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes the airline; its implementations go with it (ON DELETE CASCADE).
func (r *AirlineRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM airlines WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAirlineNotFound
	}
	return nil
}
