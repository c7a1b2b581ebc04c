package model

import "time"

// Role names stored in users.role. Registration only offers FAN and BAND;
// ADMIN accounts are seeded at startup.
const (
	RoleFan   = "FAN"
	RoleBand  = "BAND"
	RoleAdmin = "ADMIN"
)

// User mirrors the `users` table. Handlers define separate response
// types with JSON tags; this struct is used by the repository layer.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash (bcrypt)
	Role         string    // users.role (FAN, BAND, ADMIN)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the token is stored; the raw value goes to the client.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
