package models

import "time"

// Team groups profiles. Team-only tasks are visible across a team.
type Team struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
