package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/ndc-feature-tracker/internal/model"
)

const implementationColumns = "id, airline_id, feature_id, value, notes, created_at, updated_at"

// ImplementationUpdate carries the fields of a partial update keyed by the
// airline/feature pair.  ClearNotes sets notes to NULL.
type ImplementationUpdate struct {
	Value      *string
	Notes      *string
	ClearNotes bool
}

func (u ImplementationUpdate) empty() bool {
	return u.Value == nil && u.Notes == nil && !u.ClearNotes
}

// ImplementationRepo encapsulates queries on the implementations table.
type ImplementationRepo struct {
	db *sql.DB
}

func NewImplementationRepo(db *sql.DB) *ImplementationRepo { return &ImplementationRepo{db: db} }

func scanImplementation(s rowScanner, im *model.Implementation) error {
	return s.Scan(&im.ID, &im.AirlineID, &im.FeatureID, &im.Value, &im.Notes, &im.CreatedAt, &im.UpdatedAt)
}

// List returns every implementation ordered by airline then feature id.
func (r *ImplementationRepo) List(ctx context.Context) ([]model.Implementation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+implementationColumns+" FROM implementations ORDER BY airline_id, feature_id")
	if err != nil {
		return nil, fmt.Errorf("list implementations: %w", err)
	}
	defer rows.Close()

	out := make([]model.Implementation, 0)
	for rows.Next() {
		var im model.Implementation
		if err := scanImplementation(rows, &im); err != nil {
			return nil, err
		}
		out = append(out, im)
	}
	return out, rows.Err()
}

func (r *ImplementationRepo) getOne(ctx context.Context, where string, args ...any) (*model.Implementation, error) {
	var im model.Implementation
	err := scanImplementation(r.db.QueryRowContext(ctx,
		"SELECT "+implementationColumns+" FROM implementations WHERE "+where, args...), &im)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrImplementationNotFound
		}
		return nil, err
	}
	return &im, nil
}

// GetByID returns ErrImplementationNotFound when no row matches.
func (r *ImplementationRepo) GetByID(ctx context.Context, id uint64) (*model.Implementation, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByPair looks an implementation up by its airline/feature pair.
func (r *ImplementationRepo) GetByPair(ctx context.Context, airlineID, featureID uint64) (*model.Implementation, error) {
	return r.getOne(ctx, "airline_id = ? AND feature_id = ?", airlineID, featureID)
}

// Create inserts the implementation.  A second row for the same pair yields
// ErrDuplicate; a missing airline or feature yields ErrConflict.
func (r *ImplementationRepo) Create(ctx context.Context, im model.Implementation) (*model.Implementation, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO implementations (airline_id, feature_id, value, notes) VALUES (?, ?, ?, ?)",
		im.AirlineID, im.FeatureID, im.Value, im.Notes)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// UpdateByPair applies the set fields of u to the pair's row.
func (r *ImplementationRepo) UpdateByPair(ctx context.Context, airlineID, featureID uint64, u ImplementationUpdate) (*model.Implementation, error) {
	current, err := r.GetByPair(ctx, airlineID, featureID)
	if err != nil {
		return nil, err
	}
	if u.empty() {
		return current, nil
	}

	b := sq.Update("implementations")
	if u.Value != nil {
		b = b.Set("value", *u.Value)
	}
	switch {
	case u.ClearNotes:
		b = b.Set("notes", nil)
	case u.Notes != nil:
		b = b.Set("notes", *u.Notes)
	}
	q, args, err := b.Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).Where(sq.Eq{"id": current.ID}).ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, current.ID)
}

// DeleteByPair removes the pair's row.
func (r *ImplementationRepo) DeleteByPair(ctx context.Context, airlineID, featureID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM implementations WHERE airline_id = ? AND feature_id = ?", airlineID, featureID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrImplementationNotFound
	}
	return nil
}
