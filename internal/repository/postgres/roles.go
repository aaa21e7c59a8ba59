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

// RoleRepository implements role catalog, admission, and membership queries.
type RoleRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRoleRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewRoleRepository(exec pgExecutor) *RoleRepository {
	return &RoleRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID retrieves a role by its ID.
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.getRole(ctx, squirrel.Eq{"id": id})
}

// GetByCode retrieves a role by its unique code.
func (r *RoleRepository) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	return r.getRole(ctx, squirrel.Eq{"code": code})
}

func (r *RoleRepository) getRole(ctx context.Context, where squirrel.Eq) (*domain.Role, error) {
	stmt, args, err := r.builder.Select("id", "code", "name", "kind", "description").
		From("workflow.roles").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		role        domain.Role
		description sql.NullString
	)

	if err := row.Scan(&role.ID, &role.Code, &role.Name, &role.Kind, &description); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan role: %w", err)
	}

	if description.Valid {
		role.Description = &description.String
	}

	return &role, nil
}

// IsEligible reports whether the role has been admitted for the unit.
func (r *RoleRepository) IsEligible(ctx context.Context, unitID, roleID string) (bool, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("workflow.role_admissions").
		Where(squirrel.Eq{"unit_id": unitID, "role_id": roleID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build role eligibility sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("check role eligibility: %w", err)
	}

	return count > 0, nil
}

// ListEligible returns the roles admitted for a unit ordered by code.
func (r *RoleRepository) ListEligible(ctx context.Context, unitID string) ([]domain.Role, error) {
	stmt, args, err := r.builder.Select("r.id", "r.code", "r.name", "r.kind", "r.description").
		From("workflow.roles r").
		Join("workflow.role_admissions ra ON ra.role_id = r.id").
		Where(squirrel.Eq{"ra.unit_id": unitID}).
		OrderBy("r.code ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build eligible roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query eligible roles: %w", err)
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		var (
			role        domain.Role
			description sql.NullString
		)
		if err := rows.Scan(&role.ID, &role.Code, &role.Name, &role.Kind, &description); err != nil {
			return nil, fmt.Errorf("scan eligible role: %w", err)
		}
		if description.Valid {
			role.Description = &description.String
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate eligible roles: %w", err)
	}

	return roles, nil
}

// UsersWithRoleInUnit returns the ids of active users holding a unit-scoped
// grant of the role within the unit.
func (r *RoleRepository) UsersWithRoleInUnit(ctx context.Context, unitID, roleID string) ([]string, error) {
	stmt, args, err := r.builder.Select("g.user_id").
		From("workflow.user_role_grants g").
		Join("workflow.users u ON u.id = g.user_id").
		Where(squirrel.Eq{"g.unit_id": unitID, "g.role_id": roleID}).
		Where(squirrel.Eq{"u.status": domain.UserStatusActive}).
		OrderBy("g.user_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build role members sql: %w", err)
	}

	return r.queryUserIDs(ctx, stmt, args)
}

// UsersWithUnboundedRole returns the ids of active users holding the role
// through virtual-group membership.
func (r *RoleRepository) UsersWithUnboundedRole(ctx context.Context, roleID string) ([]string, error) {
	stmt, args, err := r.builder.Select("DISTINCT m.user_id").
		From("workflow.virtual_group_members m").
		Join("workflow.virtual_groups vg ON vg.id = m.group_id").
		Join("workflow.users u ON u.id = m.user_id").
		Where(squirrel.Eq{"vg.role_id": roleID}).
		Where(squirrel.Eq{"u.status": domain.UserStatusActive}).
		OrderBy("m.user_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build unbounded role members sql: %w", err)
	}

	return r.queryUserIDs(ctx, stmt, args)
}

func (r *RoleRepository) queryUserIDs(ctx context.Context, stmt string, args []any) ([]string, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query role members: %w", err)
	}
	defer rows.Close()

	userIDs := make([]string, 0)
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan role member: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role members: %w", err)
	}

	return userIDs, nil
}

var _ port.RoleRepository = (*RoleRepository)(nil)
