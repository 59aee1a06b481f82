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
	ErrTeamNameRequired = errors.New("team name is required")
	ErrTeamNameTooLong  = fmt.Errorf("team name must be at most %d characters", constants.MaxTeamNameLength)
	ErrTeamExists       = errors.New("team already exists")
)

// TeamService manages the fixed set of teams members can join.
type TeamService struct {
	teamRepo repository.TeamRepository
	logger   logging.Logger
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository, logger logging.Logger) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		logger:   logger,
	}
}

// ListTeams returns every team ordered by name.
func (s *TeamService) ListTeams() ([]models.Team, error) {
	teams, err := s.teamRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// CreateTeam creates a team with a unique name.
func (s *TeamService) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	if utf8.RuneCountInString(name) > constants.MaxTeamNameLength {
		return nil, ErrTeamNameTooLong
	}

	if _, err := s.teamRepo.FindByName(name); err == nil {
		return nil, ErrTeamExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check team: %w", err)
	}

	team := &models.Team{Name: name}
	if err := s.teamRepo.Create(team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	s.logger.Info(ctx, "team created", "team_id", team.ID, "name", team.Name)
	return team, nil
}

// SeedTeams creates every missing team from names. Existing teams are left
// alone, so running it twice is harmless. It returns the teams it created.
func (s *TeamService) SeedTeams(ctx context.Context, names []string) ([]models.Team, error) {
	created := make([]models.Team, 0, len(names))
	for _, name := range names {
		team, err := s.CreateTeam(ctx, name)
		if errors.Is(err, ErrTeamExists) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed team %q: %w", name, err)
		}
		created = append(created, *team)
	}
	return created, nil
}
