package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zdenkokanos/MTAA-backend/models"
)

var (
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamNameConflict      = errors.New("team name conflict within tournament")
	ErrTeamCodeConflict      = errors.New("team code conflict within tournament")
	ErrTeamTournamentInvalid = errors.New("team tournament reference invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error)
	FindByCode(ctx context.Context, exec SQLExecutor, tournamentID int, code string, lock bool) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.EnrolledTeam, error)
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO teams (tournament_id, team_name, code)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, team.TournamentID, team.Name, team.Code).
		Scan(&team.ID, &team.CreatedAt)
	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, tournament_id, team_name, code, created_at FROM teams WHERE id = $1`

	team := &models.Team{}
	err := executor.QueryRowContext(ctx, query, id).
		Scan(&team.ID, &team.TournamentID, &team.Name, &team.Code, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

// FindByCode ищет команду по коду приглашения внутри турнира.
// При lock=true строка команды блокируется до конца транзакции (FOR UPDATE).
func (r *postgresTeamRepository) FindByCode(ctx context.Context, exec SQLExecutor, tournamentID int, code string, lock bool) (*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, team_name, code, created_at
		FROM teams
		WHERE tournament_id = $1 AND code = $2`
	if lock {
		query += " FOR UPDATE"
	}

	team := &models.Team{}
	err := executor.QueryRowContext(ctx, query, tournamentID, code).
		Scan(&team.ID, &team.TournamentID, &team.Name, &team.Code, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.EnrolledTeam, error) {
	query := `
		SELECT t.id, t.team_name, COUNT(tm.id)
		FROM teams t
		LEFT JOIN team_members tm ON tm.team_id = t.id
		WHERE t.tournament_id = $1
		GROUP BY t.id, t.team_name
		ORDER BY t.team_name`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.EnrolledTeam, 0)
	for rows.Next() {
		var t models.EnrolledTeam
		if scanErr := rows.Scan(&t.ID, &t.Name, &t.MemberCount); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE tournament_id = $1`, tournamentID).Scan(&count)
	return count, err
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pgUniqueViolation:
			switch pqErr.Constraint {
			case "teams_tournament_id_code_key":
				return ErrTeamCodeConflict
			case "teams_tournament_id_team_name_key":
				return ErrTeamNameConflict
			}
		case pgForeignKeyViolation:
			if pqErr.Constraint == "teams_tournament_id_fkey" {
				return ErrTeamTournamentInvalid
			}
		}
	}
	return err
}
