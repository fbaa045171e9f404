package models

import "time"

// BingoCard is one submitted ticket. Cards live inside the owning group's
// JSON column, denormalized with the owner's identity and the group name at
// submission time.
type BingoCard struct {
	ID        string           `json:"id"`
	GroupName string           `json:"group_name"`
	UserID    uint             `json:"user_id"`
	UserName  string           `json:"user_name"`
	UserEmail string           `json:"user_email"`
	Numbers   map[string][]int `json:"numbers"` // letter -> column numbers
	CreatedAt time.Time        `json:"created_at"`
}
