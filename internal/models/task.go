package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusNew       TaskStatus = "new"
	TaskStatusAssigned  TaskStatus = "assigned"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusClosed    TaskStatus = "closed"
)

// TaskStatuses lists statuses in lifecycle order.
var TaskStatuses = []TaskStatus{
	TaskStatusNew,
	TaskStatusAssigned,
	TaskStatusCompleted,
	TaskStatusClosed,
}

func (s TaskStatus) IsValid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Visibility string

const (
	VisibilityPrivate  Visibility = "private"
	VisibilityTeamOnly Visibility = "team_only"
	VisibilityPublic   Visibility = "public"
)

// Visibilities lists visibility levels from narrowest to widest.
var Visibilities = []Visibility{
	VisibilityPrivate,
	VisibilityTeamOnly,
	VisibilityPublic,
}

func (v Visibility) IsValid() bool {
	for _, x := range Visibilities {
		if v == x {
			return true
		}
	}
	return false
}

type Difficulty string

const (
	DifficultyTrivial   Difficulty = "trivial"
	DifficultyEasy      Difficulty = "easy"
	DifficultyOK        Difficulty = "ok"
	DifficultyHard      Difficulty = "hard"
	DifficultyHeroic    Difficulty = "heroic"
	DifficultyNightmare Difficulty = "nightmare"
)

// Difficulties lists difficulty levels from easiest to hardest.
var Difficulties = []Difficulty{
	DifficultyTrivial,
	DifficultyEasy,
	DifficultyOK,
	DifficultyHard,
	DifficultyHeroic,
	DifficultyNightmare,
}

var difficultyRewards = map[Difficulty]uint64{
	DifficultyTrivial:   1,
	DifficultyEasy:      5,
	DifficultyOK:        10,
	DifficultyHard:      25,
	DifficultyHeroic:    100,
	DifficultyNightmare: 500,
}

// Reward is the reputation granted to whoever completed a task of this
// difficulty once its creator closes it. Unknown difficulties reward nothing.
func (d Difficulty) Reward() uint64 {
	return difficultyRewards[d]
}

func (d Difficulty) IsValid() bool {
	_, ok := difficultyRewards[d]
	return ok
}

type Task struct {
	ID            uint64     `gorm:"primarykey" json:"id"`
	Name          string     `gorm:"type:varchar(64);not null" json:"name"`
	Description   string     `gorm:"type:varchar(128);not null;default:''" json:"description"`
	Visibility    Visibility `gorm:"type:varchar(20);not null;default:'public'" json:"visibility"`
	Difficulty    Difficulty `gorm:"type:varchar(20);not null;default:'ok'" json:"difficulty"`
	Status        TaskStatus `gorm:"type:varchar(20);not null;default:'new'" json:"status"`
	CreatorID     uint64     `gorm:"not null" json:"creator_id"`
	AssignedToID  *uint64    `json:"assigned_to_id"`
	CompletedByID *uint64    `json:"completed_by_id"`
	IsRemoved     bool       `gorm:"not null;default:false" json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relations
	Creator     User  `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	AssignedTo  *User `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	CompletedBy *User `gorm:"foreignKey:CompletedByID" json:"completed_by,omitempty"`
}

// IsNew reports whether the task has not been completed or assigned yet.
func (t *Task) IsNew() bool {
	return t.Status == TaskStatusNew
}

// IsCreatedBy reports whether userID created the task.
func (t *Task) IsCreatedBy(userID uint64) bool {
	return t.CreatorID == userID
}

// IsVisibleTo reports whether a user belonging to teamID may see the task.
// Team-only tasks need Creator.Profile to be loaded; without it they are
// visible to their creator alone.
func (t *Task) IsVisibleTo(userID, teamID uint64) bool {
	if t.Visibility == VisibilityPublic || t.CreatorID == userID {
		return true
	}
	if t.Visibility != VisibilityTeamOnly || t.Creator.Profile == nil {
		return false
	}
	return t.Creator.Profile.TeamID == teamID
}
