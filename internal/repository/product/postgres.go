package product

import (
	"context"
	"errors"

	"pizzeria-storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const selectColumns = `
SELECT id, name, COALESCE(description, ''), price, currency, price_ref, COALESCE(product_ref, ''), mode,
       COALESCE(image, ''), COALESCE(category_id, ''), popular, vegetarian, spicy, allergens, position, created_at
FROM products
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

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, selectColumns+`ORDER BY position ASC, id ASC`)
}

func (r *postgresRepo) ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return r.query(ctx, selectColumns+`WHERE category_id = $1 ORDER BY position ASC, id ASC`, categoryID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectColumns+`WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product repo: not found")
			return nil, domain.ErrNotFound
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("product repo: get")
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, description, price, currency, price_ref, product_ref, mode, image, category_id,
                      popular, vegetarian, spicy, allergens, position)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), $8, NULLIF($9, ''), NULLIF($10, ''), $11, $12, $13, $14, $15)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    currency = EXCLUDED.currency,
    price_ref = EXCLUDED.price_ref,
    product_ref = COALESCE(EXCLUDED.product_ref, products.product_ref),
    mode = EXCLUDED.mode,
    image = COALESCE(EXCLUDED.image, products.image),
    category_id = COALESCE(EXCLUDED.category_id, products.category_id),
    popular = EXCLUDED.popular,
    vegetarian = EXCLUDED.vegetarian,
    spicy = EXCLUDED.spicy,
    allergens = EXCLUDED.allergens,
    position = EXCLUDED.position
RETURNING created_at
`
	if p.Mode == "" {
		p.Mode = domain.ModePayment
	}
	if p.Allergens == nil {
		p.Allergens = []string{}
	}
	err := r.pool.QueryRow(ctx, q,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		p.Currency,
		p.PriceRef,
		p.ProductRef,
		p.Mode,
		p.Image,
		p.CategoryID,
		p.Popular,
		p.Vegetarian,
		p.Spicy,
		p.Allergens,
		p.Position,
	).Scan(&p.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("product repo: upsert")
		return nil, err
	}
	r.logger.Debug().Str("product_id", p.ID).Str("price_ref", p.PriceRef).Msg("product repo: upserted")
	return &p, nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("product repo: list")
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("product repo: list rows")
		return nil, err
	}
	return result, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Currency,
		&p.PriceRef,
		&p.ProductRef,
		&p.Mode,
		&p.Image,
		&p.CategoryID,
		&p.Popular,
		&p.Vegetarian,
		&p.Spicy,
		&p.Allergens,
		&p.Position,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
