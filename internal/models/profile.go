package models

import "time"

type Profile struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	CreatedAt    time.Time  `json:"created_at"`
	LastPlayedAt *time.Time `json:"last_played_at"`
}
