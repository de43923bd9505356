// Package user holds the user lookup collaborator the domain services
// consume for existence and role checks. User accounts themselves are
// managed elsewhere; nothing here is cached.
package user

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// RoleFinancialInstitution marks a user that owns a financial institution.
const RoleFinancialInstitution = "financial_institution"

// Roles is a user's role set, stored as a JSON array so it is portable
// across the sqlite and postgres drivers.
type Roles []string

// Has reports whether role is present.
func (r Roles) Has(role string) bool {
	for _, existing := range r {
		if existing == role {
			return true
		}
	}
	return false
}

// Add returns the role set with role appended when absent.
func (r Roles) Add(role string) Roles {
	if r.Has(role) {
		return r
	}
	return append(r, role)
}

// Value implements driver.Valuer.
func (r Roles) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (r *Roles) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("user: cannot scan roles from %T", src)
	}
}

// User is a marketplace account.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:"id,pk" json:"id"`
	Email     string    `bun:"email,notnull,unique" json:"email"`
	Name      string    `bun:"name,notnull" json:"name"`
	Roles     Roles     `bun:"roles,type:text" json:"roles"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Store is the user persistence contract. The domain services use FindByID
// for existence checks and Update for role promotion; the remaining finders
// exist for the controller layer.
type Store interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}
