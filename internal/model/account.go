package model

import "time"

// Account is a login credential row. PasswordHash is a bcrypt hash and is
// never serialized.
type Account struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	LastAccess   time.Time `json:"lastAccess,omitzero"`
}

const RoleAdmin = "admin"
