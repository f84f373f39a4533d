package auth

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id"`
	FullName      string    `bun:"full_name,notnull" json:"fullName"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	IsActive      bool      `bun:"is_active,notnull,default:true" json:"isActive"`
	Roles         Roles     `bun:"roles,notnull,type:text" json:"roles"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// Public returns a copy of the user without password material.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.PasswordHash = ""
	out.Roles = append(Roles(nil), u.Roles...)
	return &out
}

// HasRole checks if the user holds role
func (u *User) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	return u.Roles.Has(role)
}

// NormalizeEmail is the case policy applied to emails on
// registration and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	record.Email = NormalizeEmail(record.Email)
	record.FullName = strings.TrimSpace(record.FullName)
	record.Roles = record.Roles.Normalize()

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
}

// Value stores roles as a JSON array so both sqlite and postgres
// can hold them in a text column.
func (rs Roles) Value() (driver.Value, error) {
	b, err := json.Marshal(rs.Normalize().Strings())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (rs *Roles) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*rs = Roles{DefaultRole}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("roles: unsupported type %T", src)
	}

	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil {
		return fmt.Errorf("roles: %w", err)
	}

	out := make(Roles, 0, len(labels))
	for _, l := range labels {
		out = append(out, Role(l))
	}
	*rs = out.Normalize()
	return nil
}
