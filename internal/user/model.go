package user

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Account is a local identity record. SubjectID is the stable identifier
// carried in tokens and referenced by clients.
type Account struct {
	ID        int64
	SubjectID string
	Username  string
	Email     string
	Password  string
	Role      Role
	CreatedAt time.Time
}
