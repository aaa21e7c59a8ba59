package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Units         *UnitRepository
	Users         *UserRepository
	Roles         *RoleRepository
	VirtualGroups *VirtualGroupRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Units:         NewUnitRepository(pool),
		Users:         NewUserRepository(pool),
		Roles:         NewRoleRepository(pool),
		VirtualGroups: NewVirtualGroupRepository(pool),
	}
}
