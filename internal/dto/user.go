package dto

import (
	"github.com/yukikurage/todolist-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64      `json:"id"`
	Username  string      `json:"username"`
	FirstName string      `json:"first_name,omitempty"`
	LastName  string      `json:"last_name,omitempty"`
	Profile   *ProfileDTO `json:"profile,omitempty"`
}

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ProfileDTO represents a member's profile in API responses
type ProfileDTO struct {
	UserID     uint64   `json:"user_id"`
	HasSigned  bool     `json:"has_signed"`
	Reputation uint64   `json:"reputation"`
	TeamID     uint64   `json:"team_id"`
	Team       *TeamDTO `json:"team,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}

	// Include profile if preloaded
	if user.Profile != nil {
		profile := ToProfileDTO(*user.Profile)
		dto.Profile = &profile
	}

	return dto
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team) TeamDTO {
	return TeamDTO{
		ID:   team.ID,
		Name: team.Name,
	}
}

// ToTeamDTOs converts a slice of teams
func ToTeamDTOs(teams []models.Team) []TeamDTO {
	dtos := make([]TeamDTO, len(teams))
	for i, team := range teams {
		dtos[i] = ToTeamDTO(team)
	}
	return dtos
}

// ToProfileDTO converts a Profile model to ProfileDTO
func ToProfileDTO(profile models.Profile) ProfileDTO {
	dto := ProfileDTO{
		UserID:     profile.UserID,
		HasSigned:  profile.HasSigned,
		Reputation: profile.Reputation,
		TeamID:     profile.TeamID,
	}

	if profile.Team.ID != 0 {
		team := ToTeamDTO(profile.Team)
		dto.Team = &team
	}

	return dto
}
