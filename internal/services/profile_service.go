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
	ErrProfileExists     = errors.New("profile already exists")
	ErrTermsNotAccepted  = errors.New("terms must be accepted")
	ErrTeamNotFound      = errors.New("team not found")
	ErrFirstNameRequired = errors.New("first name is required")
	ErrLastNameRequired  = errors.New("last name is required")
	ErrNameTooLong       = fmt.Errorf("names must be at most %d characters", constants.MaxPersonNameLength)
)

// ProfileService handles onboarding: a user becomes a full member once
// they accept the terms and join a team.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	teamRepo    repository.TeamRepository
	userRepo    repository.UserRepository
	logger      logging.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profileRepo repository.ProfileRepository, teamRepo repository.TeamRepository, userRepo repository.UserRepository, logger logging.Logger) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		teamRepo:    teamRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// CreateProfileInput represents the onboarding form.
type CreateProfileInput struct {
	UserID    uint64
	TeamID    uint64
	HasSigned bool
	FirstName string
	LastName  string
}

// CreateProfile onboards a user.
func (s *ProfileService) CreateProfile(ctx context.Context, input CreateProfileInput) (*models.Profile, error) {
	if _, err := s.profileRepo.FindByUserID(input.UserID); err == nil {
		return nil, ErrProfileExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check profile: %w", err)
	}

	if !input.HasSigned {
		return nil, ErrTermsNotAccepted
	}

	firstName, lastName, err := normalizeNames(input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}

	if _, err := s.teamRepo.FindByID(input.TeamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	profile := &models.Profile{
		UserID:     input.UserID,
		HasSigned:  true,
		TeamID:     input.TeamID,
		Reputation: models.DefaultReputation,
	}
	if err := s.profileRepo.CreateWithNames(profile, firstName, lastName); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info(ctx, "profile created", "user_id", input.UserID, "team_id", input.TeamID)

	return s.GetProfile(input.UserID)
}

// GetProfile returns the user's profile with its team.
func (s *ProfileService) GetProfile(userID uint64) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileRequired
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return profile, nil
}

// UpdateNamesInput holds the new names of a user.
type UpdateNamesInput struct {
	UserID    uint64
	FirstName string
	LastName  string
}

// UpdateNames changes a member's first and last names.
func (s *ProfileService) UpdateNames(ctx context.Context, input UpdateNamesInput) (*models.User, error) {
	if _, err := s.GetProfile(input.UserID); err != nil {
		return nil, err
	}

	firstName, lastName, err := normalizeNames(input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateNames(input.UserID, firstName, lastName); err != nil {
		return nil, fmt.Errorf("failed to update names: %w", err)
	}

	user, err := s.userRepo.FindByID(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func normalizeNames(first, last string) (string, string, error) {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" {
		return "", "", ErrFirstNameRequired
	}
	if last == "" {
		return "", "", ErrLastNameRequired
	}
	if utf8.RuneCountInString(first) > constants.MaxPersonNameLength ||
		utf8.RuneCountInString(last) > constants.MaxPersonNameLength {
		return "", "", ErrNameTooLong
	}
	return first, last, nil
}
