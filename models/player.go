package models

import (
	"time"
)

// Player is a local snapshot of the profile service's user record, holding
// just what match notifications need (the display name). Owned solely by
// this service and populated by the player sync worker; device registration
// and push endpoints live with the push service, not here.
type Player struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"` // the profile service's UUID
	Username  string    `gorm:"index;not null" json:"username"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
