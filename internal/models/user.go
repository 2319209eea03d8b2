package models

import (
	"github.com/uptrace/bun"
)

// User is keyed by the identity provider's subject claim.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID    string `bun:"id,pk"`
	Name  string `bun:"name,notnull"`
	Email string `bun:"email"`
}
