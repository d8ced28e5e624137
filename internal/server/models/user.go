package models

import "time"

// Role values assigned to accounts. New registrations get RoleUser.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	LastLogin    *time.Time
	CreatedAt    time.Time
}

// Roles returns the role claim set copied verbatim into minted access
// tokens. Role changes after minting are not reflected until the next mint.
func (u *User) Roles() []string {
	return []string{u.Role}
}
