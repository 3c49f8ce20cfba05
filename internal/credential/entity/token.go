// Package entity holds the credential domain model.
package entity

import (
	"time"

	"github.com/cratebin/cratebin/internal/pkg/token"
)

// APIToken is a registry credential as stored, digest only. The plaintext
// form exists solely in TokenCreate's response.
type APIToken struct {
	ID         int64
	UserID     int64
	Name       string
	LastUsedAt *time.Time
	CreatedAt  time.Time
	Revoked    bool
}

// NewAPIToken carries the fields persisted when a credential is issued.
type NewAPIToken struct {
	ID        int64
	UserID    int64
	Name      string
	TokenHash token.HashedToken
}
