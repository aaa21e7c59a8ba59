package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/core/port"
	"github.com/arklim/workflow-resolution/internal/repository"
)

// UserRepository implements user lookups against PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID retrieves a user by its ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	stmt, args, err := r.builder.Select(
		"id", "username", "display_name", "email",
		"home_unit_id", "function_manager_id", "entity_manager_id",
		"status", "created_at",
	).
		From("workflow.users").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	user, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return user, nil
}

// ListByUnit returns active users homed directly in the unit.
func (r *UserRepository) ListByUnit(ctx context.Context, unitID string) ([]domain.User, error) {
	stmt, args, err := r.builder.Select(
		"id", "username", "display_name", "email",
		"home_unit_id", "function_manager_id", "entity_manager_id",
		"status", "created_at",
	).
		From("workflow.users").
		Where(squirrel.Eq{"home_unit_id": unitID}).
		Where(squirrel.Eq{"status": domain.UserStatusActive}).
		OrderBy("username ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list unit users sql: %w", err)
	}

	return r.queryUsers(ctx, stmt, args)
}

// ListBySubtree returns active users homed in the unit or in any unit whose
// materialized path lies under the given path.
func (r *UserRepository) ListBySubtree(ctx context.Context, unitID, path string) ([]domain.User, error) {
	stmt, args, err := r.builder.Select(
		"u.id", "u.username", "u.display_name", "u.email",
		"u.home_unit_id", "u.function_manager_id", "u.entity_manager_id",
		"u.status", "u.created_at",
	).
		From("workflow.users u").
		Join("workflow.business_units b ON b.id = u.home_unit_id").
		Where(squirrel.Or{
			squirrel.Eq{"b.id": unitID},
			squirrel.Like{"b.path": path + "/%"},
		}).
		Where(squirrel.Eq{"u.status": domain.UserStatusActive}).
		Where(squirrel.Eq{"b.status": domain.UnitStatusActive}).
		OrderBy("u.username ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list subtree users sql: %w", err)
	}

	return r.queryUsers(ctx, stmt, args)
}

// CountBySubtree counts the active users in the unit's subtree without
// materializing them.
func (r *UserRepository) CountBySubtree(ctx context.Context, unitID, path string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(u.id)").
		From("workflow.users u").
		Join("workflow.business_units b ON b.id = u.home_unit_id").
		Where(squirrel.Or{
			squirrel.Eq{"b.id": unitID},
			squirrel.Like{"b.path": path + "/%"},
		}).
		Where(squirrel.Eq{"u.status": domain.UserStatusActive}).
		Where(squirrel.Eq{"b.status": domain.UnitStatusActive}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count subtree users sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count subtree users: %w", err)
	}

	return count, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, stmt string, args []any) ([]domain.User, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user            domain.User
		email           sql.NullString
		homeUnitID      sql.NullString
		functionManager sql.NullString
		entityManager   sql.NullString
	)

	if err := row.Scan(
		&user.ID, &user.Username, &user.DisplayName, &email,
		&homeUnitID, &functionManager, &entityManager,
		&user.Status, &user.CreatedAt,
	); err != nil {
		return nil, err
	}

	if email.Valid {
		user.Email = &email.String
	}
	if homeUnitID.Valid {
		user.HomeUnitID = &homeUnitID.String
	}
	if functionManager.Valid {
		user.FunctionManagerID = &functionManager.String
	}
	if entityManager.Valid {
		user.EntityManagerID = &entityManager.String
	}

	return &user, nil
}

var _ port.UserRepository = (*UserRepository)(nil)
