package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zdenkokanos/MTAA-backend/models"
)

var ErrPushTokenUserInvalid = errors.New("push token user reference invalid")

type PushTokenRepository interface {
	Save(ctx context.Context, token *models.PushToken) error
	ListRecipientsForTournament(ctx context.Context, tournamentID int) ([]models.PushRecipient, error)
}

type postgresPushTokenRepository struct {
	db *sql.DB
}

func NewPostgresPushTokenRepository(db *sql.DB) PushTokenRepository {
	return &postgresPushTokenRepository{db: db}
}

// Save сохраняет токен; существующий токен переназначается пользователю.
func (r *postgresPushTokenRepository) Save(ctx context.Context, token *models.PushToken) error {
	query := `
		INSERT INTO push_tokens (user_id, token, platform)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform`
	_, err := r.db.ExecContext(ctx, query, token.UserID, token.Token, token.Platform)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pgForeignKeyViolation {
			return ErrPushTokenUserInvalid
		}
		return err
	}
	return nil
}

func (r *postgresPushTokenRepository) ListRecipientsForTournament(ctx context.Context, tournamentID int) ([]models.PushRecipient, error) {
	query := `
		SELECT u.id, u.first_name, pt.token
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		JOIN push_tokens pt ON pt.user_id = u.id
		WHERE tm.tournament_id = $1`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipients := make([]models.PushRecipient, 0)
	for rows.Next() {
		var p models.PushRecipient
		if scanErr := rows.Scan(&p.UserID, &p.FirstName, &p.Token); scanErr != nil {
			return nil, scanErr
		}
		recipients = append(recipients, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return recipients, nil
}
