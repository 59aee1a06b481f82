package dto

import (
	"time"

	"github.com/yukikurage/todolist-api/internal/models"
	"github.com/yukikurage/todolist-api/internal/services"
	"github.com/yukikurage/todolist-api/internal/utils"
)

// TaskDTO represents a task in API responses. The action flags are
// computed for the user the response is rendered for.
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Visibility  models.Visibility `json:"visibility"`
	Difficulty  models.Difficulty `json:"difficulty"`
	Reward      uint64            `json:"reward"`
	Status      models.TaskStatus `json:"status"`
	CreatorID   uint64            `json:"creator_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Creator     *UserDTO          `json:"creator,omitempty"`
	CompletedBy *UserDTO          `json:"completed_by,omitempty"`
	Editable    bool              `json:"editable"`
	Closable    bool              `json:"closable"`
	Completable bool              `json:"completable"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// TaskDraftDTO represents a suggested task that has not been created
type TaskDraftDTO struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Difficulty  models.Difficulty `json:"difficulty"`
	Reward      uint64            `json:"reward"`
}

// ToTaskDTO converts a Task model to TaskDTO as seen by viewerID
func ToTaskDTO(task models.Task, viewerID uint64) TaskDTO {
	isCreator := task.IsCreatedBy(viewerID)

	dto := TaskDTO{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Visibility:  task.Visibility,
		Difficulty:  task.Difficulty,
		Reward:      task.Difficulty.Reward(),
		Status:      task.Status,
		CreatorID:   task.CreatorID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Editable:    isCreator && task.Status == models.TaskStatusNew,
		Closable:    isCreator && task.Status == models.TaskStatusCompleted,
		Completable: task.Status == models.TaskStatusNew,
	}

	// Include creator if preloaded
	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		creator.Profile = nil
		dto.Creator = &creator
	}

	if task.CompletedBy != nil {
		completedBy := ToUserDTO(*task.CompletedBy)
		completedBy.Profile = nil
		dto.CompletedBy = &completedBy
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, viewerID uint64, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, viewerID)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: utils.TotalPages(totalCount, pageSize),
	}
}

// ToTaskDraftDTOs converts generated drafts
func ToTaskDraftDTOs(drafts []services.GeneratedTask) []TaskDraftDTO {
	dtos := make([]TaskDraftDTO, len(drafts))
	for i, draft := range drafts {
		dtos[i] = TaskDraftDTO{
			Name:        draft.Name,
			Description: draft.Description,
			Difficulty:  draft.Difficulty,
			Reward:      draft.Difficulty.Reward(),
		}
	}
	return dtos
}
