package service

import (
	"fmt"
	"strings"

	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"gorm.io/gorm"
)

const (
	TeamCore      = "core"
	TeamMentor    = "mentor"
	TeamAdvisor   = "advisor"
	TeamVolunteer = "volunteer"
)

// ErrTeamMemberNotFound is returned when a team member does not exist.
var ErrTeamMemberNotFound = fmt.Errorf("team member %w", ErrNotFound)

// TeamService handles team member CRUD.
type TeamService struct {
	*contentStore[db.TeamMember, *db.TeamMember]
}

// TeamMemberInput represents fields accepted when creating or updating a team member.
type TeamMemberInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Role        string `json:"role" validate:"required,max=120"`
	Bio         string `json:"bio" validate:"max=5000"`
	PhotoURL    string `json:"photo_url" validate:"omitempty,max=1000,weblink"`
	LinkedInURL string `json:"linkedin_url" validate:"omitempty,max=1000,url"`
	TwitterURL  string `json:"twitter_url" validate:"omitempty,max=1000,url"`
	Email       string `json:"email" validate:"omitempty,max=200,email"`
	Team        string `json:"team" validate:"required,oneof=core mentor advisor volunteer"`
	Published   *bool  `json:"published"`
	SortOrder   *int   `json:"sort_order" validate:"omitempty,min=0"`
}

// NewTeamService creates a TeamService instance.
func NewTeamService(gdb *gorm.DB) *TeamService {
	return &TeamService{
		contentStore: newContentStore[db.TeamMember, *db.TeamMember](gdb, ErrTeamMemberNotFound, "name", "role", "team"),
	}
}

// InputFrom projects a stored member back into an input.
func (s *TeamService) InputFrom(member *db.TeamMember) TeamMemberInput {
	published := member.Published
	sortOrder := member.SortOrder
	return TeamMemberInput{
		Name:        member.Name,
		Role:        member.Role,
		Bio:         member.Bio,
		PhotoURL:    member.PhotoURL,
		LinkedInURL: member.LinkedInURL,
		TwitterURL:  member.TwitterURL,
		Email:       member.Email,
		Team:        member.Team,
		Published:   &published,
		SortOrder:   &sortOrder,
	}
}

// Create inserts a new team member.
func (s *TeamService) Create(input TeamMemberInput) (*db.TeamMember, error) {
	input, err := prepareTeamMember(input)
	if err != nil {
		return nil, err
	}

	member := db.TeamMember{}
	assignTeamMember(&member, input)
	if err := s.applyInputState(&member, input.Published, input.SortOrder, true); err != nil {
		return nil, err
	}

	if err := s.db.Create(&member).Error; err != nil {
		return nil, fmt.Errorf("create team member: %w", err)
	}
	return &member, nil
}

// Update replaces every field of an existing team member.
func (s *TeamService) Update(id uint, input TeamMemberInput) (*db.TeamMember, error) {
	member, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	input, err = prepareTeamMember(input)
	if err != nil {
		return nil, err
	}

	assignTeamMember(member, input)
	if err := s.applyInputState(member, input.Published, input.SortOrder, false); err != nil {
		return nil, err
	}

	if err := s.db.Save(member).Error; err != nil {
		return nil, fmt.Errorf("update team member: %w", err)
	}
	return member, nil
}

// ListPublished returns published members, optionally limited to one team.
func (s *TeamService) ListPublished(team string, limit int) ([]db.TeamMember, error) {
	team = strings.ToLower(strings.TrimSpace(team))
	if team == "" {
		return s.published(limit, nil)
	}
	switch team {
	case TeamCore, TeamMentor, TeamAdvisor, TeamVolunteer:
	default:
		return nil, fieldError("team", "team must be one of core, mentor, advisor, volunteer")
	}
	return s.published(limit, func(q *gorm.DB) *gorm.DB {
		return q.Where("team = ?", team)
	})
}

func prepareTeamMember(input TeamMemberInput) (TeamMemberInput, error) {
	input.Name = plainText(input.Name)
	input.Role = plainText(input.Role)
	input.Bio = plainText(input.Bio)
	input.PhotoURL = strings.TrimSpace(input.PhotoURL)
	input.LinkedInURL = strings.TrimSpace(input.LinkedInURL)
	input.TwitterURL = strings.TrimSpace(input.TwitterURL)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Team = strings.ToLower(strings.TrimSpace(input.Team))
	if input.Team == "" {
		input.Team = TeamCore
	}

	if err := validateStruct(input); err != nil {
		return input, err
	}
	return input, nil
}

func assignTeamMember(member *db.TeamMember, input TeamMemberInput) {
	member.Name = input.Name
	member.Role = input.Role
	member.Bio = input.Bio
	member.PhotoURL = input.PhotoURL
	member.LinkedInURL = input.LinkedInURL
	member.TwitterURL = input.TwitterURL
	member.Email = input.Email
	member.Team = input.Team
}
