package models

import "time"

// DefaultReputation is the score every new profile starts with.
const DefaultReputation uint64 = 1

// Profile extends a User once they accept the terms and join a team.
// Reputation only ever grows, by the reward of each task they completed
// that was then closed by its creator.
type Profile struct {
	UserID     uint64    `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	HasSigned  bool      `gorm:"not null;default:false" json:"has_signed"`
	TeamID     uint64    `gorm:"not null" json:"team_id"`
	Reputation uint64    `gorm:"not null;default:1" json:"reputation"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}
