package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Username     string    `db:"username" json:"username"`
	Password     []byte    `db:"password" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	RegionID     *int64    `db:"region_id" json:"region_id,omitempty"`
	LastLogin    time.Time `db:"last_login,omitempty" json:"last_login,omitempty"`
	RegisteredAt time.Time `db:"registered_at,omitempty" json:"registered_at,omitempty"`
}
