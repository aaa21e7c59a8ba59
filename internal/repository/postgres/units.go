package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/core/port"
	"github.com/arklim/workflow-resolution/internal/repository"
)

// UnitRepository implements organizational unit persistence.
type UnitRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUnitRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewUnitRepository(exec pgExecutor) *UnitRepository {
	return &UnitRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new unit.
func (r *UnitRepository) Create(ctx context.Context, unit domain.OrganizationalUnit) error {
	stmt, args, err := r.builder.Insert("workflow.business_units").
		Columns("id", "name", "parent_id", "path", "status", "created_at", "updated_at").
		Values(unit.ID, unit.Name, unit.ParentID, unit.Path, unit.Status, unit.CreatedAt, unit.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert unit sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert unit: %w", err)
	}

	return nil
}

// GetByID retrieves a unit by its ID.
func (r *UnitRepository) GetByID(ctx context.Context, id string) (*domain.OrganizationalUnit, error) {
	stmt, args, err := r.builder.Select("id", "name", "parent_id", "path", "status", "created_at", "updated_at").
		From("workflow.business_units").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select unit sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	unit, err := scanUnit(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan unit: %w", err)
	}

	return unit, nil
}

// ListChildren returns the direct children of a unit ordered by name.
func (r *UnitRepository) ListChildren(ctx context.Context, parentID string) ([]domain.OrganizationalUnit, error) {
	stmt, args, err := r.builder.Select("id", "name", "parent_id", "path", "status", "created_at", "updated_at").
		From("workflow.business_units").
		Where(squirrel.Eq{"parent_id": parentID}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list children sql: %w", err)
	}

	return r.queryUnits(ctx, stmt, args)
}

// ListSubtree returns the unit and every descendant, matched by id or by
// materialized path prefix.
func (r *UnitRepository) ListSubtree(ctx context.Context, unitID, path string) ([]domain.OrganizationalUnit, error) {
	stmt, args, err := r.builder.Select("id", "name", "parent_id", "path", "status", "created_at", "updated_at").
		From("workflow.business_units").
		Where(squirrel.Or{
			squirrel.Eq{"id": unitID},
			squirrel.Like{"path": path + "/%"},
		}).
		OrderBy("path ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list subtree sql: %w", err)
	}

	return r.queryUnits(ctx, stmt, args)
}

// SetStatus updates the unit's lifecycle status.
func (r *UnitRepository) SetStatus(ctx context.Context, unitID string, status domain.UnitStatus) error {
	stmt, args, err := r.builder.Update("workflow.business_units").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": unitID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update unit status sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update unit status: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Reparent updates the unit's parent reference and rewrites the paths of the
// unit and its whole subtree in one transaction.
func (r *UnitRepository) Reparent(ctx context.Context, unitID string, newParentID *string, oldPath, newPath string) error {
	beginner, ok := r.exec.(pgTxBeginner)
	if !ok {
		return r.reparent(ctx, r.exec, unitID, newParentID, oldPath, newPath)
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reparent tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.reparent(ctx, tx, unitID, newParentID, oldPath, newPath); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reparent tx: %w", err)
	}

	return nil
}

func (r *UnitRepository) reparent(ctx context.Context, exec pgExecutor, unitID string, newParentID *string, oldPath, newPath string) error {
	stmt, args, err := r.builder.Update("workflow.business_units").
		Set("parent_id", newParentID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": unitID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update unit parent sql: %w", err)
	}

	res, err := exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update unit parent: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	// Splice the new prefix onto the subtree in a single statement.
	stmt, args, err = r.builder.Update("workflow.business_units").
		Set("path", squirrel.Expr("? || substr(path, ?)", newPath, len(oldPath)+1)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Or{
			squirrel.Eq{"path": oldPath},
			squirrel.Like{"path": oldPath + "/%"},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build rewrite subtree paths sql: %w", err)
	}

	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("rewrite subtree paths: %w", err)
	}

	return nil
}

func (r *UnitRepository) queryUnits(ctx context.Context, stmt string, args []any) ([]domain.OrganizationalUnit, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	units := make([]domain.OrganizationalUnit, 0)
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, *unit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}

	return units, nil
}

func scanUnit(row pgx.Row) (*domain.OrganizationalUnit, error) {
	var (
		unit     domain.OrganizationalUnit
		parentID sql.NullString
	)

	if err := row.Scan(&unit.ID, &unit.Name, &parentID, &unit.Path, &unit.Status, &unit.CreatedAt, &unit.UpdatedAt); err != nil {
		return nil, err
	}

	if parentID.Valid {
		unit.ParentID = &parentID.String
	}

	return &unit, nil
}

var _ port.UnitRepository = (*UnitRepository)(nil)
