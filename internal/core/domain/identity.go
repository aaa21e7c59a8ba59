package domain

import "time"

// UserStatus enumerates possible account states.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User mirrors the persisted representation in the users table. HomeUnitID
// anchors the user in the organizational hierarchy; the two manager
// references are read only by the direct-manager assignment strategies.
type User struct {
	ID                string
	Username          string
	DisplayName       string
	Email             *string
	HomeUnitID        *string
	FunctionManagerID *string
	EntityManagerID   *string
	Status            UserStatus
	CreatedAt         time.Time
}

// Active reports whether the user may appear in candidate pools and
// target expansions.
func (u User) Active() bool {
	return u.Status == UserStatusActive
}
