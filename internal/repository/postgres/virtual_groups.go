package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/core/port"
	"github.com/arklim/workflow-resolution/internal/repository"
)

// VirtualGroupRepository implements virtual group persistence and membership.
type VirtualGroupRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewVirtualGroupRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewVirtualGroupRepository(exec pgExecutor) *VirtualGroupRepository {
	return &VirtualGroupRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new virtual group.
func (r *VirtualGroupRepository) Create(ctx context.Context, group domain.VirtualGroup) error {
	stmt, args, err := r.builder.Insert("workflow.virtual_groups").
		Columns("id", "name", "role_id", "created_at").
		Values(group.ID, group.Name, group.RoleID, group.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert virtual group sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert virtual group: %w", err)
	}

	return nil
}

// GetByID retrieves a virtual group by its ID.
func (r *VirtualGroupRepository) GetByID(ctx context.Context, id string) (*domain.VirtualGroup, error) {
	stmt, args, err := r.builder.Select("id", "name", "role_id", "created_at").
		From("workflow.virtual_groups").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select virtual group sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var group domain.VirtualGroup
	if err := row.Scan(&group.ID, &group.Name, &group.RoleID, &group.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan virtual group: %w", err)
	}

	return &group, nil
}

// ExistsWithRole reports whether any virtual group already binds the role.
func (r *VirtualGroupRepository) ExistsWithRole(ctx context.Context, roleID string) (bool, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("workflow.virtual_groups").
		Where(squirrel.Eq{"role_id": roleID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build role binding sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("check role binding: %w", err)
	}

	return count > 0, nil
}

// AddMember places a user into the group, ignoring duplicates.
func (r *VirtualGroupRepository) AddMember(ctx context.Context, groupID, userID string) error {
	stmt, args, err := r.builder.Insert("workflow.virtual_group_members").
		Columns("group_id", "user_id", "added_at").
		Values(groupID, userID, time.Now().UTC()).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build add group member sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("add group member: %w", err)
	}

	return nil
}

// RemoveMember withdraws a user from the group.
func (r *VirtualGroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	stmt, args, err := r.builder.Delete("workflow.virtual_group_members").
		Where(squirrel.Eq{"group_id": groupID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build remove group member sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("remove group member: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListMembers returns the active users in the group.
func (r *VirtualGroupRepository) ListMembers(ctx context.Context, groupID string) ([]domain.User, error) {
	stmt, args, err := r.builder.Select(
		"u.id", "u.username", "u.display_name", "u.email",
		"u.home_unit_id", "u.function_manager_id", "u.entity_manager_id",
		"u.status", "u.created_at",
	).
		From("workflow.users u").
		Join("workflow.virtual_group_members m ON m.user_id = u.id").
		Where(squirrel.Eq{"m.group_id": groupID}).
		Where(squirrel.Eq{"u.status": domain.UserStatusActive}).
		OrderBy("u.username ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list group members sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query group members: %w", err)
	}
	defer rows.Close()

	members := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		members = append(members, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group members: %w", err)
	}

	return members, nil
}

// CountMembers counts the active users in the group without materializing them.
func (r *VirtualGroupRepository) CountMembers(ctx context.Context, groupID string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(m.user_id)").
		From("workflow.virtual_group_members m").
		Join("workflow.users u ON u.id = m.user_id").
		Where(squirrel.Eq{"m.group_id": groupID}).
		Where(squirrel.Eq{"u.status": domain.UserStatusActive}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count group members sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count group members: %w", err)
	}

	return count, nil
}

var _ port.VirtualGroupRepository = (*VirtualGroupRepository)(nil)
