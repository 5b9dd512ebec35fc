package favorite

import (
	"context"

	"pizzeria-storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zerolog.Logger) Repository {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, user_id::text, item_id, item_name, item_price, created_at
FROM favorites
WHERE user_id = $1
ORDER BY created_at DESC, id
`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("favorite repo: list")
		return nil, err
	}
	defer rows.Close()

	var result []domain.Favorite
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *f)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Add(ctx context.Context, f domain.Favorite) (*domain.Favorite, error) {
	saved, err := scanFavorite(r.pool.QueryRow(ctx, `
INSERT INTO favorites (user_id, item_id, item_name, item_price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, item_id) DO UPDATE
SET item_name = EXCLUDED.item_name, item_price = EXCLUDED.item_price
RETURNING id::text, user_id::text, item_id, item_name, item_price, created_at
`, f.UserID, f.ItemID, f.ItemName, f.ItemPrice))
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", f.UserID).Str("item_id", f.ItemID).Msg("favorite repo: add")
		return nil, err
	}
	return saved, nil
}

func (r *postgresRepo) Delete(ctx context.Context, userID, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND id::text = $2`, userID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanFavorite(row pgx.Row) (*domain.Favorite, error) {
	var f domain.Favorite
	if err := row.Scan(&f.ID, &f.UserID, &f.ItemID, &f.ItemName, &f.ItemPrice, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}
