package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/ndc-feature-tracker/internal/model"
)

const featureColumns = "id, category, name, description, created_at, updated_at"

// FeatureUpdate carries the fields of a partial update.  ClearDescription
// sets the description to NULL and wins over Description.
type FeatureUpdate struct {
	Category         *model.FeatureCategory
	Name             *string
	Description      *string
	ClearDescription bool
}

func (u FeatureUpdate) empty() bool {
	return u.Category == nil && u.Name == nil && u.Description == nil && !u.ClearDescription
}

// FeatureRepo encapsulates queries on the features table.
type FeatureRepo struct {
	db *sql.DB
}

func NewFeatureRepo(db *sql.DB) *FeatureRepo { return &FeatureRepo{db: db} }

func scanFeature(s rowScanner, f *model.Feature) error {
	return s.Scan(&f.ID, &f.Category, &f.Name, &f.Description, &f.CreatedAt, &f.UpdatedAt)
}

// List returns every feature ordered by category then name.
func (r *FeatureRepo) List(ctx context.Context) ([]model.Feature, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+featureColumns+" FROM features ORDER BY category, name")
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	defer rows.Close()

	out := make([]model.Feature, 0)
	for rows.Next() {
		var f model.Feature
		if err := scanFeature(rows, &f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetByID returns ErrFeatureNotFound when no row matches.
func (r *FeatureRepo) GetByID(ctx context.Context, id uint64) (*model.Feature, error) {
	var f model.Feature
	err := scanFeature(r.db.QueryRowContext(ctx, "SELECT "+featureColumns+" FROM features WHERE id = ?", id), &f)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFeatureNotFound
		}
		return nil, err
	}
	return &f, nil
}

// WithImplementations returns the feature plus its implementations joined to
// airline details, ordered by airline name.
func (r *FeatureRepo) WithImplementations(ctx context.Context, id uint64) (*model.FeatureWithImplementations, error) {
	f, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	const q = `SELECT i.id, i.airline_id, i.feature_id, i.value, i.notes, i.created_at, i.updated_at,
	                  a.name, a.codes, a.provider, a.status
	           FROM implementations i
	           JOIN airlines a ON a.id = i.airline_id
	           WHERE i.feature_id = ?
	           ORDER BY a.name`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("feature implementations: %w", err)
	}
	defer rows.Close()

	out := &model.FeatureWithImplementations{Feature: *f, Implementations: make([]model.FeatureImplementation, 0)}
	for rows.Next() {
		var fi model.FeatureImplementation
		if err := rows.Scan(&fi.ID, &fi.AirlineID, &fi.FeatureID, &fi.Value, &fi.Notes, &fi.CreatedAt, &fi.UpdatedAt,
			&fi.AirlineName, &fi.AirlineCodes, &fi.AirlineProvider, &fi.AirlineStatus); err != nil {
			return nil, err
		}
		out.Implementations = append(out.Implementations, fi)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts the feature and returns the stored row.
func (r *FeatureRepo) Create(ctx context.Context, f model.Feature) (*model.Feature, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO features (category, name, description) VALUES (?, ?, ?)",
		f.Category, f.Name, f.Description)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update applies the set fields of u and returns the stored row.
func (r *FeatureRepo) Update(ctx context.Context, id uint64, u FeatureUpdate) (*model.Feature, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.empty() {
		return current, nil
	}

	b := sq.Update("features")
	if u.Category != nil {
		b = b.Set("category", *u.Category)
	}
	if u.Name != nil {
		b = b.Set("name", *u.Name)
	}
	switch {
	case u.ClearDescription:
		b = b.Set("description", nil)
	case u.Description != nil:
		b = b.Set("description", *u.Description)
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

// Delete removes the feature and, by cascade, its implementations.
func (r *FeatureRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM features WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFeatureNotFound
	}
	return nil
}
