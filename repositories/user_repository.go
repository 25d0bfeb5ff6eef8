package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/zdenkokanos/MTAA-backend/models"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserEmailConflict   = errors.New("user email conflict")
	ErrUserInvalidCategory = errors.New("preferred category does not exist")
)

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePreferences(ctx context.Context, exec SQLExecutor, id int, location *string, lat, lon *float64) error
	UpdateImageKey(ctx context.Context, id int, imageKey *string) error
	GetCoordinates(ctx context.Context, id int) (models.Coordinates, error)
	ListPreferredCategoryIDs(ctx context.Context, id int) ([]int, error)
	SetPreferredCategories(ctx context.Context, exec SQLExecutor, id int, categoryIDs []int) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const userColumns = `
	id, first_name, last_name, gender, age, email, password_hash,
	preferred_location, preferred_latitude, preferred_longitude, image_key, created_at`

func scanUser(row rowScanner, u *models.User) error {
	return row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Gender, &u.Age, &u.Email, &u.PasswordHash,
		&u.PreferredLocation, &u.PreferredLatitude, &u.PreferredLongitude, &u.ImageKey, &u.CreatedAt,
	)
}

func (r *postgresUserRepository) Create(ctx context.Context, exec SQLExecutor, user *models.User) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO users (
			first_name, last_name, gender, age, email, password_hash,
			preferred_location, preferred_latitude, preferred_longitude
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		user.FirstName, user.LastName, user.Gender, user.Age, user.Email, user.PasswordHash,
		user.PreferredLocation, user.PreferredLatitude, user.PreferredLongitude,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pgUniqueViolation && pqErr.Constraint == "users_email_key" {
			return ErrUserEmailConflict
		}
		return err
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user := &models.User{}
	if err := scanUser(r.db.QueryRowContext(ctx, query, id), user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user := &models.User{}
	if err := scanUser(r.db.QueryRowContext(ctx, query, email), user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *postgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if scanErr := scanUser(rows, &u); scanErr != nil {
			return nil, scanErr
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *postgresUserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			first_name = $1,
			last_name = $2,
			gender = $3,
			age = $4,
			email = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query,
		user.FirstName, user.LastName, user.Gender, user.Age, user.Email, user.ID)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pgUniqueViolation && pqErr.Constraint == "users_email_key" {
			return ErrUserEmailConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdatePreferences(ctx context.Context, exec SQLExecutor, id int, location *string, lat, lon *float64) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE users SET
			preferred_location = $1,
			preferred_latitude = $2,
			preferred_longitude = $3
		WHERE id = $4`
	result, err := executor.ExecContext(ctx, query, location, lat, lon, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateImageKey(ctx context.Context, id int, imageKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET image_key = $1 WHERE id = $2`, imageKey, id)
	if err != nil {
		return fmt.Errorf("failed to update user image key: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

// GetCoordinates возвращает предпочитаемые координаты пользователя.
// Незаполненные координаты считаются точкой (0, 0).
func (r *postgresUserRepository) GetCoordinates(ctx context.Context, id int) (models.Coordinates, error) {
	query := `
		SELECT COALESCE(preferred_latitude, 0), COALESCE(preferred_longitude, 0)
		FROM users WHERE id = $1`
	var c models.Coordinates
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.Latitude, &c.Longitude)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Coordinates{}, ErrUserNotFound
		}
		return models.Coordinates{}, err
	}
	return c, nil
}

func (r *postgresUserRepository) ListPreferredCategoryIDs(ctx context.Context, id int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id FROM user_preferred_categories WHERE user_id = $1 ORDER BY category_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var categoryID int
		if scanErr := rows.Scan(&categoryID); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, categoryID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// SetPreferredCategories заменяет набор предпочитаемых категорий пользователя.
func (r *postgresUserRepository) SetPreferredCategories(ctx context.Context, exec SQLExecutor, id int, categoryIDs []int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM user_preferred_categories WHERE user_id = $1`, id); err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	ids := make([]int64, len(categoryIDs))
	for i, c := range categoryIDs {
		ids[i] = int64(c)
	}
	query := `
		INSERT INTO user_preferred_categories (user_id, category_id)
		SELECT $1, unnest($2::int[])
		ON CONFLICT DO NOTHING`
	if _, err := executor.ExecContext(ctx, query, id, pq.Array(ids)); err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pgForeignKeyViolation {
			return ErrUserInvalidCategory
		}
		return err
	}
	return nil
}
