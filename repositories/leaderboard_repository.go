package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zdenkokanos/MTAA-backend/models"
)

var (
	ErrLeaderboardEntryNotFound = errors.New("leaderboard entry not found")
	ErrLeaderboardTeamConflict  = errors.New("team already has a position in this tournament")
	ErrLeaderboardInvalidRef    = errors.New("leaderboard references an unknown team or tournament")
)

type LeaderboardRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, entry *models.LeaderboardEntry) error
	ClearTeam(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) error
	Remove(ctx context.Context, tournamentID, teamID int) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.LeaderboardEntry, error)
}

type postgresLeaderboardRepository struct {
	db *sql.DB
}

func NewPostgresLeaderboardRepository(db *sql.DB) LeaderboardRepository {
	return &postgresLeaderboardRepository{db: db}
}

func (r *postgresLeaderboardRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Upsert ставит команду на позицию; прежний обладатель позиции заменяется.
func (r *postgresLeaderboardRepository) Upsert(ctx context.Context, exec SQLExecutor, entry *models.LeaderboardEntry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO leaderboard (tournament_id, team_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (tournament_id, position) DO UPDATE SET team_id = EXCLUDED.team_id`

	_, err := executor.ExecContext(ctx, query, entry.TournamentID, entry.TeamID, entry.Position)
	if err != nil {
		if pqErr, ok := asPQError(err); ok {
			switch pqErr.Code {
			case pgUniqueViolation:
				if pqErr.Constraint == "leaderboard_tournament_id_team_id_key" {
					return ErrLeaderboardTeamConflict
				}
			case pgForeignKeyViolation:
				return ErrLeaderboardInvalidRef
			}
		}
		return err
	}
	return nil
}

// ClearTeam снимает команду с её текущей позиции; отсутствие записи не ошибка.
func (r *postgresLeaderboardRepository) ClearTeam(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM leaderboard WHERE tournament_id = $1 AND team_id = $2`, tournamentID, teamID)
	return err
}

func (r *postgresLeaderboardRepository) Remove(ctx context.Context, tournamentID, teamID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM leaderboard WHERE tournament_id = $1 AND team_id = $2`, tournamentID, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLeaderboardEntryNotFound)
}

func (r *postgresLeaderboardRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT l.tournament_id, l.team_id, l.position, t.team_name
		FROM leaderboard l
		JOIN teams t ON t.id = l.team_id
		WHERE l.tournament_id = $1
		ORDER BY l.position`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0)
	for rows.Next() {
		var e models.LeaderboardEntry
		if scanErr := rows.Scan(&e.TournamentID, &e.TeamID, &e.Position, &e.TeamName); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
