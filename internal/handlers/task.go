package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todolist-api/internal/constants"
	"github.com/yukikurage/todolist-api/internal/dto"
	apierrors "github.com/yukikurage/todolist-api/internal/errors"
	"github.com/yukikurage/todolist-api/internal/logging"
	"github.com/yukikurage/todolist-api/internal/middleware"
	"github.com/yukikurage/todolist-api/internal/models"
	"github.com/yukikurage/todolist-api/internal/services"
	"github.com/yukikurage/todolist-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	logger      logging.Logger
}

func NewTaskHandler(taskService *services.TaskService, logger logging.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks returns the tasks visible to the current user.
// Supports ?visibility=, ?status=, ?sort=[-]field, ?page= and ?per_page=.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListTasksInput{
		UserID:   userID,
		Sort:     c.Query("sort"),
		Page:     params.Page,
		PageSize: params.Limit,
	}
	if v := c.Query("visibility"); v != "" {
		visibility := models.Visibility(v)
		input.Visibility = &visibility
	}
	if s := c.Query("status"); s != "" {
		status := models.TaskStatus(s)
		input.Status = &status
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, userID, params.Page, params.Limit, total))
}

// GetTask returns a task visible to the current user
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), taskID, userID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, userID))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Name        string            `json:"name" binding:"required"`
		Description string            `json:"description"`
		Visibility  models.Visibility `json:"visibility"`
		Difficulty  models.Difficulty `json:"difficulty"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
		Difficulty:  req.Difficulty,
		CreatorID:   userID,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task, userID))
}

// UpdateTask edits a new task created by the current user
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Name        *string            `json:"name"`
		Description *string            `json:"description"`
		Visibility  *models.Visibility `json:"visibility"`
		Difficulty  *models.Difficulty `json:"difficulty"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, userID, services.UpdateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
		Difficulty:  req.Difficulty,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, userID))
}

// DeleteTask removes a new task created by the current user
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), taskID, userID); err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// CompleteTask marks a task as done by the current user
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	task, err := h.taskService.CompleteTask(c.Request.Context(), taskID, userID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, userID))
}

// CloseTask closes a completed task and rewards the user who completed it
func (h *TaskHandler) CloseTask(c *gin.Context) {
	userID, taskID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	task, err := h.taskService.CloseTask(c.Request.Context(), taskID, userID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, userID))
}

// SuggestTasks drafts tasks from free text using AI
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type SuggestTasksRequest struct {
		Text string `json:"text" binding:"required,max=4000"`
	}

	var req SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.SuggestTasks(c.Request.Context(), services.GenerateTasksInput{
		Text:      req.Text,
		CreatorID: userID,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDraftDTOs(drafts)})
}

func taskRequestIDs(c *gin.Context) (userID, taskID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}

	taskID, exists = middleware.GetTaskID(c)
	if !exists {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, 0, false
	}

	return userID, taskID, true
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidTaskState):
		apierrors.InvalidState(c, err.Error())
	case errors.Is(err, services.ErrProfileRequired):
		apierrors.ProfileRequired(c, err.Error())
	case errors.Is(err, services.ErrInvalidTaskInput):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	default:
		h.logger.With("request_id", c.GetString(constants.ContextKeyRequestID)).
			Error(c.Request.Context(), "task request failed", "error", err)
		apierrors.InternalError(c, "Internal server error")
	}
}
