package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/todolist-api/internal/constants"
	"github.com/yukikurage/todolist-api/internal/logging"
	"github.com/yukikurage/todolist-api/internal/models"
	"github.com/yukikurage/todolist-api/internal/repository"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound covers a missing task, a removed task and a task the
	// actor does not own where ownership is required. Callers cannot tell
	// these apart.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidTaskState is returned when the task's status (or, for
	// Complete and Get, its visibility) does not permit the action.
	ErrInvalidTaskState = errors.New("you do not have the right to perform this action on this task")
	// ErrProfileRequired is returned when the actor has not created a profile yet.
	ErrProfileRequired = errors.New("you must have a valid profile to perform this action")

	// ErrInvalidTaskInput is wrapped by every task validation error.
	ErrInvalidTaskInput = errors.New("invalid task input")

	ErrTaskNameRequired       = fmt.Errorf("%w: name is required", ErrInvalidTaskInput)
	ErrTaskNameTooLong        = fmt.Errorf("%w: name must be at most %d characters", ErrInvalidTaskInput, constants.MaxTaskNameLength)
	ErrTaskDescriptionTooLong = fmt.Errorf("%w: description must be at most %d characters", ErrInvalidTaskInput, constants.MaxTaskDescriptionLength)
	ErrInvalidVisibility      = fmt.Errorf("%w: invalid visibility", ErrInvalidTaskInput)
	ErrInvalidDifficulty      = fmt.Errorf("%w: invalid difficulty", ErrInvalidTaskInput)
	ErrInvalidStatusFilter    = fmt.Errorf("%w: invalid status filter", ErrInvalidTaskInput)
	ErrInvalidSort            = fmt.Errorf("%w: invalid sort field", ErrInvalidTaskInput)

	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService owns the task lifecycle: new -> completed -> closed, or
// new -> closed when the creator completes their own task. Closing a task
// completed by someone else rewards the completer with reputation.
type TaskService struct {
	taskRepo    repository.TaskRepository
	profileRepo repository.ProfileRepository
	aiService   TaskSuggester
	logger      logging.Logger
}

// TaskSuggester drafts tasks from free text.
type TaskSuggester interface {
	GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error)
}

// NewTaskService creates a new TaskService. aiService may be nil.
func NewTaskService(taskRepo repository.TaskRepository, profileRepo repository.ProfileRepository, aiService TaskSuggester, logger logging.Logger) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		profileRepo: profileRepo,
		aiService:   aiService,
		logger:      logger,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Name        string
	Description string
	Visibility  models.Visibility
	Difficulty  models.Difficulty
	CreatorID   uint64
}

// UpdateTaskInput represents input for updating a task. Nil fields are left untouched.
type UpdateTaskInput struct {
	Name        *string
	Description *string
	Visibility  *models.Visibility
	Difficulty  *models.Difficulty
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID     uint64
	Visibility *models.Visibility
	Status     *models.TaskStatus
	Sort       string
	Page       int
	PageSize   int
}

// CreateTask creates a new task owned by the actor
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if _, err := s.requireProfile(input.CreatorID); err != nil {
		return nil, err
	}

	if input.Visibility == "" {
		input.Visibility = models.VisibilityPublic
	}
	if input.Difficulty == "" {
		input.Difficulty = models.DifficultyOK
	}

	task := &models.Task{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Visibility:  input.Visibility,
		Difficulty:  input.Difficulty,
		Status:      models.TaskStatusNew,
		CreatorID:   input.CreatorID,
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info(ctx, "task created", "task_id", task.ID, "creator_id", task.CreatorID)

	return s.reload(task.ID)
}

// GetTask returns a task the actor is allowed to see
func (s *TaskService) GetTask(ctx context.Context, taskID, actorID uint64) (*models.Task, error) {
	profile, err := s.requireProfile(actorID)
	if err != nil {
		return nil, err
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if !task.IsVisibleTo(actorID, profile.TeamID) {
		return nil, ErrInvalidTaskState
	}

	return task, nil
}

// ListTasks returns the non-removed tasks visible to the actor
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	profile, err := s.requireProfile(input.UserID)
	if err != nil {
		return nil, 0, err
	}

	if input.Visibility != nil && !input.Visibility.IsValid() {
		return nil, 0, ErrInvalidVisibility
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, 0, ErrInvalidStatusFilter
	}

	sortBy, desc, err := parseSort(input.Sort)
	if err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.taskRepo.ListVisible(repository.TaskFilter{
		ViewerID:   input.UserID,
		TeamID:     profile.TeamID,
		Visibility: input.Visibility,
		Status:     input.Status,
		SortBy:     sortBy,
		Descending: desc,
		Page:       input.Page,
		PageSize:   input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// UpdateTask edits a new task owned by the actor
func (s *TaskService) UpdateTask(ctx context.Context, taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findOwnedNewTask(taskID, actorID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		task.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.Visibility != nil {
		task.Visibility = *input.Visibility
	}
	if input.Difficulty != nil {
		task.Difficulty = *input.Difficulty
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.UpdateFields(task); err != nil {
		return nil, s.transitionError("update", err)
	}

	return s.reload(task.ID)
}

// DeleteTask soft deletes a new task owned by the actor
func (s *TaskService) DeleteTask(ctx context.Context, taskID, actorID uint64) error {
	if _, err := s.findOwnedNewTask(taskID, actorID); err != nil {
		return err
	}

	if err := s.taskRepo.MarkRemoved(taskID); err != nil {
		return s.transitionError("delete", err)
	}

	s.logger.Info(ctx, "task removed", "task_id", taskID, "actor_id", actorID)
	return nil
}

// CompleteTask marks a visible new task as done by the actor. A creator
// completing their own task closes it directly, without any reward.
func (s *TaskService) CompleteTask(ctx context.Context, taskID, actorID uint64) (*models.Task, error) {
	profile, err := s.requireProfile(actorID)
	if err != nil {
		return nil, err
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if !task.IsVisibleTo(actorID, profile.TeamID) || !task.IsNew() {
		return nil, ErrInvalidTaskState
	}

	status := models.TaskStatusCompleted
	if task.IsCreatedBy(actorID) {
		status = models.TaskStatusClosed
	}

	if err := s.taskRepo.MarkCompleted(taskID, actorID, status); err != nil {
		return nil, s.transitionError("complete", err)
	}

	s.logger.Info(ctx, "task completed", "task_id", taskID, "completed_by", actorID, "status", status)

	return s.reload(taskID)
}

// CloseTask closes a task the actor created once someone else completed
// it, crediting the completer with the task's reward.
func (s *TaskService) CloseTask(ctx context.Context, taskID, actorID uint64) (*models.Task, error) {
	task, err := s.findOwnedTask(taskID, actorID)
	if err != nil {
		return nil, err
	}

	if task.Status != models.TaskStatusCompleted || task.CompletedByID == nil {
		return nil, ErrInvalidTaskState
	}

	reward := task.Difficulty.Reward()
	if err := s.taskRepo.CloseAndReward(taskID, *task.CompletedByID, reward); err != nil {
		return nil, s.transitionError("close", err)
	}

	s.logger.Info(ctx, "task closed", "task_id", taskID, "rewarded_user", *task.CompletedByID, "reward", reward)

	return s.reload(taskID)
}

// GenerateTasksInput represents input for AI task drafting
type GenerateTasksInput struct {
	Text      string
	CreatorID uint64
}

// SuggestTasks drafts tasks from free text. Drafts are not persisted.
func (s *TaskService) SuggestTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	if _, err := s.requireProfile(input.CreatorID); err != nil {
		return nil, err
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	for _, aiTask := range aiTasks {
		if draft, ok := sanitizeDraft(aiTask); ok {
			validTasks = append(validTasks, draft)
		}
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

// sanitizeDraft trims a generated task to the stored field limits and
// replaces an unknown difficulty with the default one.
func sanitizeDraft(draft GeneratedTask) (GeneratedTask, bool) {
	draft.Name = truncateRunes(strings.TrimSpace(draft.Name), constants.MaxTaskNameLength)
	if draft.Name == "" {
		return draft, false
	}
	draft.Description = truncateRunes(strings.TrimSpace(draft.Description), constants.MaxTaskDescriptionLength)
	if !draft.Difficulty.IsValid() {
		draft.Difficulty = models.DifficultyOK
	}
	return draft, true
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func validateTask(task *models.Task) error {
	if task.Name == "" {
		return ErrTaskNameRequired
	}
	if utf8.RuneCountInString(task.Name) > constants.MaxTaskNameLength {
		return ErrTaskNameTooLong
	}
	if utf8.RuneCountInString(task.Description) > constants.MaxTaskDescriptionLength {
		return ErrTaskDescriptionTooLong
	}
	if !task.Visibility.IsValid() {
		return ErrInvalidVisibility
	}
	if !task.Difficulty.IsValid() {
		return ErrInvalidDifficulty
	}
	return nil
}

// parseSort accepts a sortable field optionally prefixed with "-" for
// descending order. Empty means newest first.
func parseSort(sort string) (string, bool, error) {
	if sort == "" {
		return repository.SortByCreatedAt, true, nil
	}

	desc := strings.HasPrefix(sort, "-")
	field := strings.TrimPrefix(sort, "-")

	switch field {
	case repository.SortByName,
		repository.SortByDifficulty,
		repository.SortByStatus,
		repository.SortByVisibility,
		repository.SortByCreatedAt:
		return field, desc, nil
	default:
		return "", false, ErrInvalidSort
	}
}

func (s *TaskService) requireProfile(userID uint64) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileRequired
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return profile, nil
}

func (s *TaskService) findTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Creator.Profile")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) findOwnedTask(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindOwned(taskID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) findOwnedNewTask(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.findOwnedTask(taskID, actorID)
	if err != nil {
		return nil, err
	}
	if !task.IsNew() {
		return nil, ErrInvalidTaskState
	}
	return task, nil
}

// transitionError maps a lost race on a conditional write to the same
// error the pre-check would have produced.
func (s *TaskService) transitionError(action string, err error) error {
	if errors.Is(err, repository.ErrStaleTask) {
		return ErrInvalidTaskState
	}
	return fmt.Errorf("failed to %s task: %w", action, err)
}

func (s *TaskService) reload(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Creator", "CompletedBy")
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}
	return task, nil
}
