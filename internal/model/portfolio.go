package model

import "time"

// Portfolio maps an owner to their single portfolio. One portfolio per user,
// created lazily on first use and never mutated afterwards.
type Portfolio struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
