package store

import (
	"context"
	"sync"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

// TeamGateway is the slice of the remote data gateway the team store
// needs.
type TeamGateway interface {
	ListTeams(ctx context.Context) ([]model.Team, error)
	CreateTeam(ctx context.Context, req *model.CreateTeamRequest) (*model.Team, error)
	TeamMembers(ctx context.Context, teamID string) ([]model.TeamMember, error)
	JoinTeam(ctx context.Context, teamID string) error
	LeaveTeam(ctx context.Context, teamID string) error
}

// TeamStore caches the signed-in user's team memberships and per-team
// rosters. Reads degrade to the cached snapshot on fetch errors; writes
// surface the gateway error so the caller can show it.
type TeamStore struct {
	mu      sync.Mutex
	gw      TeamGateway
	session *SessionStore
	log     *logger.Logger

	teams   []model.Team
	members map[string][]model.TeamMember
	loading bool
}

func NewTeamStore(gw TeamGateway, session *SessionStore, log *logger.Logger) *TeamStore {
	s := &TeamStore{
		gw:      gw,
		session: session,
		log:     log,
		members: make(map[string][]model.TeamMember),
	}
	session.OnReset(s.Reset)
	return s
}

// FetchTeams refreshes the membership list. Without a session, or when
// the gateway fails while a snapshot exists, the snapshot stands.
func (s *TeamStore) FetchTeams(ctx context.Context) {
	if !s.session.Authenticated() {
		return
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	teams, err := s.gw.ListTeams(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.log.Warnw("team list fetch failed, keeping cached snapshot", "error", err)
		return
	}
	s.teams = teams
}

// FetchMembers refreshes the roster for one team.
func (s *TeamStore) FetchMembers(ctx context.Context, teamID string) {
	if !s.session.Authenticated() {
		return
	}

	members, err := s.gw.TeamMembers(ctx, teamID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Warnw("team roster fetch failed, keeping cached snapshot", "team_id", teamID, "error", err)
		return
	}
	s.members[teamID] = members
}

func (s *TeamStore) Create(ctx context.Context, req *model.CreateTeamRequest) (*model.Team, error) {
	team, err := s.gw.CreateTeam(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.teams = append(s.teams, *team)
	s.mu.Unlock()
	return team, nil
}

func (s *TeamStore) Join(ctx context.Context, teamID string) error {
	if err := s.gw.JoinTeam(ctx, teamID); err != nil {
		return err
	}
	s.FetchTeams(ctx)
	return nil
}

func (s *TeamStore) Leave(ctx context.Context, teamID string) error {
	if err := s.gw.LeaveTeam(ctx, teamID); err != nil {
		return err
	}

	s.mu.Lock()
	for i, t := range s.teams {
		if t.ID == teamID {
			s.teams = append(s.teams[:i], s.teams[i+1:]...)
			break
		}
	}
	delete(s.members, teamID)
	s.mu.Unlock()
	return nil
}

// Teams returns a copy of the cached membership list.
func (s *TeamStore) Teams() []model.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Team, len(s.teams))
	copy(out, s.teams)
	return out
}

// Members returns a copy of the cached roster for a team.
func (s *TeamStore) Members(teamID string) []model.TeamMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	cached := s.members[teamID]
	out := make([]model.TeamMember, len(cached))
	copy(out, cached)
	return out
}

func (s *TeamStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// IsMember reports whether a team id is in the cached membership list.
func (s *TeamStore) IsMember(teamID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.teams {
		if t.ID == teamID {
			return true
		}
	}
	return false
}

// Reset drops all cached team data. Registered as a session reset hook.
func (s *TeamStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = nil
	s.members = make(map[string][]model.TeamMember)
	s.loading = false
}
