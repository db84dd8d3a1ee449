package model

import "time"

// Role is the authorization role stored on a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleUser }

// Gender is a profile attribute with a closed value set.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is a known gender value.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// User represents an account as stored in the `users` table.  The
// Password field always holds a bcrypt hash; it has no json tag and
// is never projected to clients.
type User struct {
	ID           uint64     `json:"id"`           // users.id
	Username     string     `json:"username"`     // users.username
	Email        string     `json:"email"`        // users.email
	Password     string     `json:"-"`            // users.password
	Nickname     string     `json:"nickname"`     // users.nickname
	Avatar       string     `json:"avatar"`       // users.avatar
	Role         Role       `json:"role"`         // users.role
	Gender       Gender     `json:"gender"`       // users.gender
	DateOfBirth  *time.Time `json:"dateOfBirth"`  // users.date_of_birth (nullable)
	CreationTime time.Time  `json:"creationtime"` // users.creationtime
	UpdateTime   time.Time  `json:"updatetime"`   // users.updatetime
}

// Token models an entry in the `tokens` table: the single outstanding
// refresh token of a user.  The raw token is not stored, only its
// SHA-256 hash.
type Token struct {
	ID           uint64     // tokens.id
	UserID       uint64     // tokens.user_id
	TokenHash    string     // tokens.token_hash
	ExpiresAt    *time.Time // tokens.expires_at (nullable)
	IsRevoked    bool       // tokens.is_revoked
	CreationTime time.Time  // tokens.creationtime
	UpdateTime   time.Time  // tokens.updatetime
}
