package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todolist-api/internal/dto"
	apierrors "github.com/yukikurage/todolist-api/internal/errors"
	"github.com/yukikurage/todolist-api/internal/logging"
	"github.com/yukikurage/todolist-api/internal/middleware"
	"github.com/yukikurage/todolist-api/internal/services"
)

// ProfileHandler serves onboarding and the team list shown by it.
type ProfileHandler struct {
	profileService *services.ProfileService
	teamService    *services.TeamService
	logger         logging.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService *services.ProfileService, teamService *services.TeamService, logger logging.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		teamService:    teamService,
		logger:         logger,
	}
}

// ListTeams returns the teams a new member can join.
func (h *ProfileHandler) ListTeams(c *gin.Context) {
	teams, err := h.teamService.ListTeams()
	if err != nil {
		h.logger.Error(c.Request.Context(), "list teams", "error", err)
		apierrors.InternalError(c, "Failed to fetch teams")
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": dto.ToTeamDTOs(teams)})
}

// CreateProfile onboards the current user.
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProfileRequest struct {
		TeamID    uint64 `json:"team_id" binding:"required"`
		HasSigned bool   `json:"has_signed"`
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
	}

	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	profile, err := h.profileService.CreateProfile(c.Request.Context(), services.CreateProfileInput{
		UserID:    userID,
		TeamID:    req.TeamID,
		HasSigned: req.HasSigned,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProfileDTO(*profile))
}

// GetProfile returns the current user's profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	profile, err := h.profileService.GetProfile(userID)
	if err != nil {
		h.respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*profile))
}

// UpdateNames changes the current user's names.
func (h *ProfileHandler) UpdateNames(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateNamesRequest struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
	}

	var req UpdateNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.profileService.UpdateNames(c.Request.Context(), services.UpdateNamesInput{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *ProfileHandler) respondProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProfileRequired):
		apierrors.ProfileRequired(c, err.Error())
	case errors.Is(err, services.ErrProfileExists):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrTeamNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTermsNotAccepted),
		errors.Is(err, services.ErrFirstNameRequired),
		errors.Is(err, services.ErrLastNameRequired),
		errors.Is(err, services.ErrNameTooLong):
		apierrors.BadRequest(c, err.Error())
	default:
		h.logger.Error(c.Request.Context(), "profile request failed", "error", err)
		apierrors.InternalError(c, "Internal server error")
	}
}
