package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

type TeamRepository struct {
	pool *pgxpool.Pool
}

func NewTeamRepository(pool *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

// Create inserts the team and enrolls the creator as admin in one transaction.
func (r *TeamRepository) Create(ctx context.Context, creatorID string, req *model.CreateTeamRequest) (*model.Team, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t := &model.Team{}
	err = tx.QueryRow(ctx, `
		INSERT INTO teams (name, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, avatar_url, created_by, created_at, updated_at
	`, req.Name, req.Description, creatorID).Scan(
		&t.ID, &t.Name, &t.Description, &t.AvatarURL, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)
	`, t.ID, creatorID, model.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	t.Role = model.RoleAdmin
	t.MemberCount = 1
	return t, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id string) (*model.Team, error) {
	t := &model.Team{}
	err := r.pool.QueryRow(ctx, `
		SELECT t.id, t.name, t.description, t.avatar_url, t.created_by, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM team_members WHERE team_id = t.id)
		FROM teams t WHERE t.id = $1
	`, id).Scan(
		&t.ID, &t.Name, &t.Description, &t.AvatarURL, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		&t.MemberCount,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListForUser returns the teams the user belongs to, with their role.
func (r *TeamRepository) ListForUser(ctx context.Context, userID string) ([]model.Team, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.name, t.description, t.avatar_url, t.created_by, t.created_at, t.updated_at,
		       m.role,
		       (SELECT COUNT(*) FROM team_members WHERE team_id = t.id)
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = $1
		ORDER BY t.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Description, &t.AvatarURL, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
			&t.Role, &t.MemberCount,
		); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}

	if teams == nil {
		teams = []model.Team{}
	}
	return teams, nil
}

func (r *TeamRepository) GetMembers(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.team_id, m.user_id, u.display_name, u.email, m.role, m.joined_at
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY m.joined_at
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.TeamMember
	for rows.Next() {
		var m model.TeamMember
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.DisplayName, &m.Email, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	if members == nil {
		members = []model.TeamMember{}
	}
	return members, nil
}

func (r *TeamRepository) GetMemberRole(ctx context.Context, teamID, userID string) (string, error) {
	var role string
	err := r.pool.QueryRow(ctx, `
		SELECT role FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID).Scan(&role)
	return role, err
}

func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID, role string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, teamID, userID, role)
	return err
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("not a member of team %s", teamID)
	}
	return nil
}

func (r *TeamRepository) SetMemberRole(ctx context.Context, teamID, userID, role string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE team_members SET role = $3 WHERE team_id = $1 AND user_id = $2
	`, teamID, userID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("not a member of team %s", teamID)
	}
	return nil
}

func (r *TeamRepository) Update(ctx context.Context, id string, req *model.UpdateTeamRequest) error {
	query := "UPDATE teams SET updated_at = NOW()"
	args := []interface{}{id}
	i := 2

	if req.Name != nil {
		query += fmt.Sprintf(", name = $%d", i)
		args = append(args, *req.Name)
		i++
	}
	if req.Description != nil {
		query += fmt.Sprintf(", description = $%d", i)
		args = append(args, *req.Description)
		i++
	}
	if req.AvatarURL != nil {
		query += fmt.Sprintf(", avatar_url = $%d", i)
		args = append(args, *req.AvatarURL)
		i++
	}

	query += " WHERE id = $1"
	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	return err
}
