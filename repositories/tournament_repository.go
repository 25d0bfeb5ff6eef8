package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/zdenkokanos/MTAA-backend/models"
)

var (
	ErrTournamentNotFound        = errors.New("tournament not found")
	ErrTournamentNameConflict    = errors.New("tournament name conflict")
	ErrTournamentInvalidCategory = errors.New("invalid category reference")
	ErrTournamentInvalidOwner    = errors.New("invalid owner reference")
	ErrTournamentInvalidData     = errors.New("tournament violates a check constraint")
	ErrTournamentStatusMismatch  = errors.New("tournament is not in the expected status")
)

type ListTournamentsFilter struct {
	CategoryName *string
	Status       *models.TournamentStatus
	Limit        int
	Offset       int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.TournamentStatus) error
	UpdateImageKey(ctx context.Context, tournamentID int, imageKey *string) error
	ListByOwner(ctx context.Context, ownerID int) ([]models.Tournament, error)
	ListByMember(ctx context.Context, userID int, closed bool) ([]models.Tournament, error)
	ListCandidates(ctx context.Context, userID int, categoryIDs []int) ([]models.TournamentSummary, error)
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	t.id, t.owner_id, t.tournament_name, t.category_id, c.category_name, t.location_name,
	t.latitude, t.longitude, t.level, t.max_team_size, t.game_setting, t.entry_fee,
	t.prize_description, t.is_public, t.additional_info, t.status, t.date, t.image_key, t.created_at`

const tournamentFrom = `
	FROM tournaments t
	JOIN sport_category c ON c.id = t.category_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTournament(row rowScanner, t *models.Tournament) error {
	var date sql.NullTime
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Name, &t.CategoryID, &t.CategoryName, &t.LocationName,
		&t.Latitude, &t.Longitude, &t.Level, &t.MaxTeamSize, &t.GameSetting, &t.EntryFee,
		&t.PrizeDescription, &t.IsPublic, &t.AdditionalInfo, &t.Status, &date, &t.ImageKey, &t.CreatedAt,
	)
	if err != nil {
		return err
	}
	if date.Valid {
		d := date.Time
		t.Date = &d
	}
	return nil
}

func (r *postgresTournamentRepository) queryTournaments(ctx context.Context, query string, args ...interface{}) ([]models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			owner_id, tournament_name, category_id, location_name, latitude, longitude,
			level, max_team_size, game_setting, entry_fee, prize_description, is_public,
			additional_info, status, date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.OwnerID, t.Name, t.CategoryID, t.LocationName, t.Latitude, t.Longitude,
		t.Level, t.MaxTeamSize, t.GameSetting, t.EntryFee, t.PrizeDescription, t.IsPublic,
		t.AdditionalInfo, t.Status, t.Date,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + tournamentFrom + ` WHERE t.id = $1`

	t := &models.Tournament{}
	err := scanTournament(executor.QueryRowContext(ctx, query, id), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + tournamentFrom + ` WHERE t.is_public = TRUE`

	args := []interface{}{}
	argID := 1

	if filter.CategoryName != nil {
		query += fmt.Sprintf(" AND c.category_name = $%d", argID)
		args = append(args, *filter.CategoryName)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND t.status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY t.date ASC NULLS LAST, t.id ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	return r.queryTournaments(ctx, query, args...)
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			tournament_name = $1,
			category_id = $2,
			location_name = $3,
			latitude = $4,
			longitude = $5,
			level = $6,
			max_team_size = $7,
			game_setting = $8,
			entry_fee = $9,
			prize_description = $10,
			is_public = $11,
			additional_info = $12,
			date = $13
		WHERE id = $14`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.CategoryID, t.LocationName, t.Latitude, t.Longitude, t.Level,
		t.MaxTeamSize, t.GameSetting, t.EntryFee, t.PrizeDescription, t.IsPublic,
		t.AdditionalInfo, t.Date, t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// UpdateStatus переводит турнир из статуса from в статус to.
// Если турнир уже не в статусе from, строка не обновляется и возвращается ErrTournamentStatusMismatch.
func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2 AND status = $3`
	result, err := executor.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentStatusMismatch)
}

func (r *postgresTournamentRepository) UpdateImageKey(ctx context.Context, tournamentID int, imageKey *string) error {
	query := `UPDATE tournaments SET image_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, imageKey, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to update tournament image key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) ListByOwner(ctx context.Context, ownerID int) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + tournamentFrom + `
		WHERE t.owner_id = $1
		ORDER BY t.date DESC NULLS LAST, t.id DESC`
	return r.queryTournaments(ctx, query, ownerID)
}

// ListByMember возвращает турниры, где у пользователя есть билет.
// closed=true - история (Closed), иначе текущие.
func (r *postgresTournamentRepository) ListByMember(ctx context.Context, userID int, closed bool) ([]models.Tournament, error) {
	statusCond := "t.status <> $2"
	order := "t.date ASC NULLS LAST"
	if closed {
		statusCond = "t.status = $2"
		order = "t.date DESC NULLS LAST"
	}
	query := `SELECT ` + tournamentColumns + tournamentFrom + `
		WHERE EXISTS (
			SELECT 1 FROM team_members tm
			WHERE tm.tournament_id = t.id AND tm.user_id = $1
		) AND ` + statusCond + `
		ORDER BY ` + order + `, t.id`
	return r.queryTournaments(ctx, query, userID, models.StatusClosed)
}

// ListCandidates возвращает предстоящие турниры из выбранных категорий,
// в которых пользователь не участвует и которые ему не принадлежат.
func (r *postgresTournamentRepository) ListCandidates(ctx context.Context, userID int, categoryIDs []int) ([]models.TournamentSummary, error) {
	query := `
		SELECT t.id, t.tournament_name, t.category_id, c.category_name, t.location_name,
			t.latitude, t.longitude, t.level, t.status, t.date
		` + tournamentFrom + `
		WHERE t.status = $1
			AND t.date >= CURRENT_DATE
			AND t.category_id = ANY($2)
			AND t.owner_id <> $3
			AND NOT EXISTS (
				SELECT 1 FROM team_members tm
				WHERE tm.tournament_id = t.id AND tm.user_id = $3
			)`

	ids := make([]int64, len(categoryIDs))
	for i, id := range categoryIDs {
		ids[i] = int64(id)
	}

	rows, err := r.db.QueryContext(ctx, query, models.StatusUpcoming, pq.Array(ids), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate tournaments: %w", err)
	}
	defer rows.Close()

	candidates := make([]models.TournamentSummary, 0)
	for rows.Next() {
		var s models.TournamentSummary
		var date sql.NullTime
		if scanErr := rows.Scan(
			&s.ID, &s.Name, &s.CategoryID, &s.CategoryName, &s.LocationName,
			&s.Latitude, &s.Longitude, &s.Level, &s.Status, &date,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan candidate tournament: %w", scanErr)
		}
		if date.Valid {
			d := date.Time
			s.Date = &d
		}
		candidates = append(candidates, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during candidate rows iteration: %w", err)
	}
	return candidates, nil
}

// ListStartingBetween возвращает предстоящие турниры с датой в интервале [from, to].
func (r *postgresTournamentRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + tournamentFrom + `
		WHERE t.status = $1 AND t.date BETWEEN $2 AND $3
		ORDER BY t.date`
	return r.queryTournaments(ctx, query, models.StatusUpcoming, from, to)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pgUniqueViolation:
			if pqErr.Constraint == "tournaments_tournament_name_key" {
				return ErrTournamentNameConflict
			}
		case pgForeignKeyViolation:
			switch pqErr.Constraint {
			case "tournaments_category_id_fkey":
				return ErrTournamentInvalidCategory
			case "tournaments_owner_id_fkey":
				return ErrTournamentInvalidOwner
			}
		case pgCheckViolation:
			return ErrTournamentInvalidData
		}
	}
	return err
}
