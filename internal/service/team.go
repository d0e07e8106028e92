package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Websitedemo13/s17-trading-go/internal/model"
	"github.com/Websitedemo13/s17-trading-go/internal/repository"
)

var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrNotTeamMember  = errors.New("not a member of this team")
	ErrNotTeamAdmin   = errors.New("admin role required")
	ErrInvalidTeam    = errors.New("team name must be 2-64 characters")
	ErrAlreadyMember  = errors.New("already a member of this team")
	ErrLastAdminLeave = errors.New("the last admin cannot leave the team")
)

type TeamService struct {
	teamRepo   *repository.TeamRepository
	notifyRepo *repository.NotificationRepository
}

func NewTeamService(teamRepo *repository.TeamRepository, notifyRepo *repository.NotificationRepository) *TeamService {
	return &TeamService{teamRepo: teamRepo, notifyRepo: notifyRepo}
}

func (s *TeamService) Create(ctx context.Context, userID string, req *model.CreateTeamRequest) (*model.Team, error) {
	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 2 || len(req.Name) > 64 {
		return nil, ErrInvalidTeam
	}
	return s.teamRepo.Create(ctx, userID, req)
}

func (s *TeamService) Get(ctx context.Context, teamID string) (*model.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

func (s *TeamService) ListForUser(ctx context.Context, userID string) ([]model.Team, error) {
	return s.teamRepo.ListForUser(ctx, userID)
}

func (s *TeamService) Members(ctx context.Context, teamID, userID string) ([]model.TeamMember, error) {
	if _, err := s.teamRepo.GetMemberRole(ctx, teamID, userID); err != nil {
		return nil, ErrNotTeamMember
	}
	return s.teamRepo.GetMembers(ctx, teamID)
}

func (s *TeamService) Join(ctx context.Context, teamID, userID string) error {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		return ErrTeamNotFound
	}
	if _, err := s.teamRepo.GetMemberRole(ctx, teamID, userID); err == nil {
		return ErrAlreadyMember
	}
	if err := s.teamRepo.AddMember(ctx, teamID, userID, model.RoleMember); err != nil {
		return err
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil
	}
	// Join already succeeded, a failed notification write is not an error.
	_ = s.notifyRepo.Create(ctx, userID, &model.Notification{
		Type:    "team",
		Title:   "Joined team",
		Message: "You are now a member of " + team.Name,
	})
	return nil
}

func (s *TeamService) Leave(ctx context.Context, teamID, userID string) error {
	role, err := s.teamRepo.GetMemberRole(ctx, teamID, userID)
	if err != nil {
		return ErrNotTeamMember
	}

	if role == model.RoleAdmin {
		members, err := s.teamRepo.GetMembers(ctx, teamID)
		if err != nil {
			return err
		}
		admins := 0
		for _, m := range members {
			if m.Role == model.RoleAdmin {
				admins++
			}
		}
		if admins <= 1 && len(members) > 1 {
			return ErrLastAdminLeave
		}
	}

	return s.teamRepo.RemoveMember(ctx, teamID, userID)
}

func (s *TeamService) SetRole(ctx context.Context, teamID, actorID, targetID, role string) error {
	if role != model.RoleAdmin && role != model.RoleMember {
		return errors.New("role must be admin or member")
	}
	if err := s.requireAdmin(ctx, teamID, actorID); err != nil {
		return err
	}
	return s.teamRepo.SetMemberRole(ctx, teamID, targetID, role)
}

func (s *TeamService) Update(ctx context.Context, teamID, actorID string, req *model.UpdateTeamRequest) error {
	if err := s.requireAdmin(ctx, teamID, actorID); err != nil {
		return err
	}
	return s.teamRepo.Update(ctx, teamID, req)
}

func (s *TeamService) Delete(ctx context.Context, teamID, actorID string) error {
	if err := s.requireAdmin(ctx, teamID, actorID); err != nil {
		return err
	}
	return s.teamRepo.Delete(ctx, teamID)
}

func (s *TeamService) requireAdmin(ctx context.Context, teamID, userID string) error {
	role, err := s.teamRepo.GetMemberRole(ctx, teamID, userID)
	if err != nil {
		return ErrNotTeamMember
	}
	if role != model.RoleAdmin {
		return ErrNotTeamAdmin
	}
	return nil
}
