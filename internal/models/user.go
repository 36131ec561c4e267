package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleCommuter = "commuter"
)

// User is reference data owned by the identity service; the core only
// reads identity and role from request claims.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        string    `bun:"id,pk" json:"id"`
	Email     string    `bun:"email,unique,notnull" json:"email"`
	FullName  string    `bun:"full_name,notnull" json:"fullName"`
	Role      string    `bun:"role,notnull" json:"role"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}
