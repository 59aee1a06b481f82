package repository

import (
	"errors"

	"github.com/yukikurage/todolist-api/internal/models"
)

// ErrStaleTask is returned by conditional transitions when the task no
// longer is in the expected status (or was removed) by the time of the write.
var ErrStaleTask = errors.New("task repository: task changed concurrently")

// TaskRepository defines the interface for task data access.
// Every lookup ignores removed tasks.
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a non-removed task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindOwned finds a non-removed task by ID created by creatorID
	FindOwned(id, creatorID uint64, preload ...string) (*models.Task, error)

	// ListVisible retrieves tasks visible to a user with filtering and pagination
	ListVisible(filter TaskFilter) ([]models.Task, int64, error)

	// UpdateFields updates the editable fields of a task that is still new
	UpdateFields(task *models.Task) error

	// MarkRemoved soft deletes a task that is still new
	MarkRemoved(id uint64) error

	// MarkCompleted moves a new task to status, recording who completed it
	MarkCompleted(id, completedByID uint64, status models.TaskStatus) error

	// CloseAndReward closes a completed task and credits reward to the
	// completer's profile in a single transaction
	CloseAndReward(id, completedByID, reward uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ViewerID   uint64
	TeamID     uint64
	Visibility *models.Visibility
	Status     *models.TaskStatus
	SortBy     string
	Descending bool
	Page       int
	PageSize   int
}

// ProfileRepository defines the interface for profile data access
type ProfileRepository interface {
	// CreateWithNames stores the user's names and their new profile atomically
	CreateWithNames(profile *models.Profile, firstName, lastName string) error

	// FindByUserID finds a profile with its team
	FindByUserID(userID uint64) (*models.Profile, error)

	// AddReputation increments a profile's reputation relative to its stored value
	AddReputation(userID, amount uint64) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Create(team *models.Team) error
	FindByID(id uint64) (*models.Team, error)
	FindByName(name string) (*models.Team, error)
	List() ([]models.Team, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID, with the profile when one exists
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// UpdateNames updates a user's first and last names
	UpdateNames(id uint64, firstName, lastName string) error
}
