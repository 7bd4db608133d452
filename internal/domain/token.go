package domain

import (
	"time"
)

// BlacklistedToken is a token revoked before its natural expiry (logout).
// Rows are pruned once expires_at passes; an expired token is rejected by the
// codec anyway, so dropping the row loses nothing.
type BlacklistedToken struct {
	ID            string    `json:"id"`
	Token         string    `json:"-"`
	UserID        string    `json:"user_id"`
	BlacklistedAt time.Time `json:"blacklisted_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}
