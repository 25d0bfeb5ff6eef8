package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zdenkokanos/MTAA-backend/models"
)

var (
	ErrMembershipNotFound       = errors.New("membership not found")
	ErrMembershipTicketConflict = errors.New("ticket conflict")
	ErrMembershipAlreadyExists  = errors.New("user already holds a membership in this tournament")
	ErrMembershipInvalidRef     = errors.New("membership references an unknown user, team or tournament")
)

type MembershipRepository interface {
	Create(ctx context.Context, exec SQLExecutor, membership *models.TeamMembership) error
	CountByTeam(ctx context.Context, exec SQLExecutor, teamID int) (int, error)
	FindByTicket(ctx context.Context, tournamentID int, ticket string) (*models.TeamMembership, error)
	ListTicketsByUser(ctx context.Context, userID int) ([]models.UserTicket, error)
}

type postgresMembershipRepository struct {
	db *sql.DB
}

func NewPostgresMembershipRepository(db *sql.DB) MembershipRepository {
	return &postgresMembershipRepository{db: db}
}

func (r *postgresMembershipRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMembershipRepository) Create(ctx context.Context, exec SQLExecutor, m *models.TeamMembership) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO team_members (user_id, team_id, tournament_id, ticket)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, m.UserID, m.TeamID, m.TournamentID, m.Ticket).
		Scan(&m.ID, &m.CreatedAt)
	return r.handleMembershipError(err)
}

func (r *postgresMembershipRepository) CountByTeam(ctx context.Context, exec SQLExecutor, teamID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM team_members WHERE team_id = $1`, teamID).Scan(&count)
	return count, err
}

func (r *postgresMembershipRepository) FindByTicket(ctx context.Context, tournamentID int, ticket string) (*models.TeamMembership, error) {
	query := `
		SELECT id, user_id, team_id, tournament_id, ticket, created_at
		FROM team_members
		WHERE tournament_id = $1 AND ticket = $2`

	m := &models.TeamMembership{}
	err := r.db.QueryRowContext(ctx, query, tournamentID, ticket).
		Scan(&m.ID, &m.UserID, &m.TeamID, &m.TournamentID, &m.Ticket, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMembershipRepository) ListTicketsByUser(ctx context.Context, userID int) ([]models.UserTicket, error) {
	query := `
		SELECT tm.id, t.id, t.tournament_name, te.id, te.team_name, tm.ticket, t.date
		FROM team_members tm
		JOIN teams te ON te.id = tm.team_id
		JOIN tournaments t ON t.id = tm.tournament_id
		WHERE tm.user_id = $1 AND t.status <> 'Closed'
		ORDER BY t.date ASC NULLS LAST, tm.id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]models.UserTicket, 0)
	for rows.Next() {
		var ut models.UserTicket
		var date sql.NullTime
		if scanErr := rows.Scan(&ut.MembershipID, &ut.TournamentID, &ut.TournamentName,
			&ut.TeamID, &ut.TeamName, &ut.Ticket, &date); scanErr != nil {
			return nil, scanErr
		}
		if date.Valid {
			d := date.Time
			ut.Date = &d
		}
		tickets = append(tickets, ut)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *postgresMembershipRepository) handleMembershipError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pgUniqueViolation:
			switch pqErr.Constraint {
			case "team_members_ticket_key":
				return ErrMembershipTicketConflict
			case "team_members_tournament_id_user_id_key":
				return ErrMembershipAlreadyExists
			}
		case pgForeignKeyViolation:
			return ErrMembershipInvalidRef
		}
	}
	return err
}
