package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zdenkokanos/MTAA-backend/models"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository interface {
	List(ctx context.Context) ([]models.SportCategory, error)
	GetIDByName(ctx context.Context, name string) (int, error)
}

type postgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

func (r *postgresCategoryRepository) List(ctx context.Context) ([]models.SportCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, category_name, category_image FROM sport_category ORDER BY category_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.SportCategory, 0)
	for rows.Next() {
		var c models.SportCategory
		if scanErr := rows.Scan(&c.ID, &c.Name, &c.Image); scanErr != nil {
			return nil, scanErr
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *postgresCategoryRepository) GetIDByName(ctx context.Context, name string) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `SELECT id FROM sport_category WHERE category_name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrCategoryNotFound
		}
		return 0, err
	}
	return id, nil
}
