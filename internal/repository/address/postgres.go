package address

import (
	"context"
	"errors"

	"pizzeria-storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const selectColumns = `
SELECT id::text, user_id::text, COALESCE(label, ''), street, city, state, zip_code, is_default, created_at
FROM user_addresses
`

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

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	rows, err := r.pool.Query(ctx, selectColumns+`
WHERE user_id = $1
ORDER BY is_default DESC, created_at DESC
`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("address repo: list")
		return nil, err
	}
	defer rows.Close()

	var result []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Get(ctx context.Context, userID, id string) (*domain.Address, error) {
	a, err := scanAddress(r.pool.QueryRow(ctx, selectColumns+`WHERE user_id = $1 AND id::text = $2`, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *postgresRepo) Create(ctx context.Context, a domain.Address) (*domain.Address, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if a.IsDefault {
		if err := clearDefault(ctx, tx, a.UserID); err != nil {
			return nil, err
		}
	}
	const q = `
INSERT INTO user_addresses (user_id, label, street, city, state, zip_code, is_default)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)
RETURNING id::text, user_id::text, COALESCE(label, ''), street, city, state, zip_code, is_default, created_at
`
	out, err := scanAddress(tx.QueryRow(ctx, q, a.UserID, a.Label, a.Street, a.City, a.State, a.ZipCode, a.IsDefault))
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", a.UserID).Msg("address repo: create")
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, a domain.Address) (*domain.Address, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if a.IsDefault {
		if err := clearDefault(ctx, tx, a.UserID); err != nil {
			return nil, err
		}
	}
	const q = `
UPDATE user_addresses
SET label = NULLIF($3, ''), street = $4, city = $5, state = $6, zip_code = $7, is_default = $8
WHERE user_id = $1 AND id::text = $2
RETURNING id::text, user_id::text, COALESCE(label, ''), street, city, state, zip_code, is_default, created_at
`
	out, err := scanAddress(tx.QueryRow(ctx, q, a.UserID, a.ID, a.Label, a.Street, a.City, a.State, a.ZipCode, a.IsDefault))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, userID, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM user_addresses WHERE user_id = $1 AND id::text = $2`, userID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetDefault(ctx context.Context, userID, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := clearDefault(ctx, tx, userID); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `UPDATE user_addresses SET is_default = true WHERE user_id = $1 AND id::text = $2`, userID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit(ctx)
}

func clearDefault(ctx context.Context, tx pgx.Tx, userID string) error {
	_, err := tx.Exec(ctx, `UPDATE user_addresses SET is_default = false WHERE user_id = $1 AND is_default`, userID)
	return err
}

func scanAddress(row pgx.Row) (*domain.Address, error) {
	var a domain.Address
	if err := row.Scan(&a.ID, &a.UserID, &a.Label, &a.Street, &a.City, &a.State, &a.ZipCode, &a.IsDefault, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
