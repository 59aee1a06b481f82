package repository

import (
	"fmt"
	"strings"

	"github.com/yukikurage/todolist-api/internal/database"
	"github.com/yukikurage/todolist-api/internal/models"
	"github.com/yukikurage/todolist-api/internal/utils"
	"gorm.io/gorm"
)

// Sortable columns accepted by ListVisible.
const (
	SortByName       = "name"
	SortByDifficulty = "difficulty"
	SortByStatus     = "status"
	SortByVisibility = "visibility"
	SortByCreatedAt  = "created_at"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a non-removed task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	return r.find(r.db.Where("tasks.id = ?", id), preload)
}

// FindOwned finds a non-removed task by ID created by creatorID
func (r *GormTaskRepository) FindOwned(id, creatorID uint64, preload ...string) (*models.Task, error) {
	return r.find(r.db.Where("tasks.id = ? AND tasks.creator_id = ?", id, creatorID), preload)
}

func (r *GormTaskRepository) find(query *gorm.DB, preload []string) (*models.Task, error) {
	var task models.Task
	query = query.Scopes(database.NotRemoved)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// ListVisible retrieves one page of tasks visible to the viewer. Page and
// PageSize are clamped like query parameters are.
// A task is visible when it is public, created by the viewer, or team-only
// and created by a member of the viewer's team.
func (r *GormTaskRepository) ListVisible(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	teamMembers := r.db.Model(&models.Profile{}).
		Select("user_id").
		Where("team_id = ?", filter.TeamID)

	query := r.db.Model(&models.Task{}).
		Scopes(database.NotRemoved).
		Where("tasks.visibility = ? OR tasks.creator_id = ? OR (tasks.visibility = ? AND tasks.creator_id IN (?))",
			models.VisibilityPublic, filter.ViewerID, models.VisibilityTeamOnly, teamMembers)

	if filter.Visibility != nil {
		query = query.Where("tasks.visibility = ?", *filter.Visibility)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order(orderClause(filter.SortBy, filter.Descending)).
		Order("tasks.id ASC").
		Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize))).
		Preload("Creator").
		Preload("CompletedBy").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// orderClause builds the ORDER BY expression for a sort key. Enumerations
// sort by their declared order rather than alphabetically.
func orderClause(sortBy string, desc bool) string {
	var expr string
	switch sortBy {
	case SortByName:
		expr = "tasks.name"
	case SortByDifficulty:
		expr = rankExpr("tasks.difficulty", models.Difficulties)
	case SortByStatus:
		expr = rankExpr("tasks.status", models.TaskStatuses)
	case SortByVisibility:
		expr = rankExpr("tasks.visibility", models.Visibilities)
	default:
		expr = "tasks.created_at"
	}

	if desc {
		return expr + " DESC"
	}
	return expr + " ASC"
}

func rankExpr[T ~string](column string, values []T) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(column)
	for i, v := range values {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", string(v), i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(values))
	return b.String()
}

// UpdateFields updates the editable fields of a task that is still new
func (r *GormTaskRepository) UpdateFields(task *models.Task) error {
	result := r.db.Model(&models.Task{}).
		Where("id = ? AND status = ? AND is_removed = ?", task.ID, models.TaskStatusNew, false).
		Updates(map[string]interface{}{
			"name":        task.Name,
			"description": task.Description,
			"visibility":  task.Visibility,
			"difficulty":  task.Difficulty,
		})
	return expectOneRow(result)
}

// MarkRemoved soft deletes a task that is still new
func (r *GormTaskRepository) MarkRemoved(id uint64) error {
	result := r.db.Model(&models.Task{}).
		Where("id = ? AND status = ? AND is_removed = ?", id, models.TaskStatusNew, false).
		Update("is_removed", true)
	return expectOneRow(result)
}

// MarkCompleted moves a new task to status, recording who completed it
func (r *GormTaskRepository) MarkCompleted(id, completedByID uint64, status models.TaskStatus) error {
	result := r.db.Model(&models.Task{}).
		Where("id = ? AND status = ? AND is_removed = ?", id, models.TaskStatusNew, false).
		Updates(map[string]interface{}{
			"status":          status,
			"completed_by_id": completedByID,
		})
	return expectOneRow(result)
}

// CloseAndReward closes a completed task and credits reward to the
// completer's profile in a single transaction
func (r *GormTaskRepository) CloseAndReward(id, completedByID, reward uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Task{}).
			Where("id = ? AND status = ? AND is_removed = ?", id, models.TaskStatusCompleted, false).
			Update("status", models.TaskStatusClosed)
		if err := expectOneRow(result); err != nil {
			return err
		}

		return incrementReputation(tx, completedByID, reward)
	})
}

func expectOneRow(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleTask
	}
	return nil
}
