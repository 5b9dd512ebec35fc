package order

import (
	"context"
	"errors"
	"fmt"

	"pizzeria-storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `
SELECT id::text, user_id::text, COALESCE(customer_name, ''), COALESCE(customer_email, ''), COALESCE(customer_phone, ''),
       street, city, state, zip_code, COALESCE(address_id::text, ''), subtotal, tax, delivery_fee, total,
       status, payment_status, COALESCE(payment_intent_id, ''), address_sync_status, created_at
FROM orders
`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

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

func (r *postgresRepo) RecordCheckout(ctx context.Context, rec CheckoutRecord) (*domain.Order, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	s := rec.Session
	var sessionRowID string
	var existingOrderID *string
	err = tx.QueryRow(ctx, `
INSERT INTO payment_sessions (checkout_session_id, payment_intent_id, customer_ref, amount_subtotal, amount_total, currency, payment_status)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7)
ON CONFLICT (checkout_session_id) DO UPDATE SET payment_status = EXCLUDED.payment_status
RETURNING id::text, order_id::text
`, s.CheckoutSessionID, s.PaymentIntentID, s.CustomerRef, s.AmountSubtotal, s.AmountTotal, s.Currency, s.PaymentStatus).
		Scan(&sessionRowID, &existingOrderID)
	if err != nil {
		r.logger.Error().Err(err).Str("checkout_session", s.CheckoutSessionID).Msg("order repo: insert payment session")
		return nil, false, err
	}

	if existingOrderID != nil {
		existing, err := r.getOrder(ctx, tx, *existingOrderID)
		if err != nil {
			return nil, false, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, false, err
		}
		r.logger.Info().Str("checkout_session", s.CheckoutSessionID).Str("order_id", existing.ID).Msg("order repo: session already reconciled")
		return existing, false, nil
	}

	o := rec.Order
	o.Items = append([]domain.OrderItem(nil), rec.Order.Items...)
	if o.AddressSyncStatus == "" {
		o.AddressSyncStatus = domain.AddressSyncNotRequested
	}
	// The saved address may have been deleted since the session was created; the
	// copied street, city, state and zip still describe the delivery.
	err = tx.QueryRow(ctx, `
INSERT INTO orders (user_id, customer_name, customer_email, customer_phone, street, city, state, zip_code, address_id,
                    subtotal, tax, delivery_fee, total, status, payment_status, payment_intent_id, address_sync_status)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8,
        (SELECT id FROM user_addresses WHERE id::text = NULLIF($9, '') AND user_id = $1),
        $10, $11, $12, $13, $14, $15, NULLIF($16, ''), $17)
RETURNING id::text, COALESCE(address_id::text, ''), created_at
`,
		o.UserID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.Street, o.City, o.State, o.ZipCode, o.AddressID,
		o.Subtotal, o.Tax, o.DeliveryFee, o.Total, o.Status, o.PaymentStatus, o.PaymentIntentID, o.AddressSyncStatus,
	).Scan(&o.ID, &o.AddressID, &o.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("checkout_session", s.CheckoutSessionID).Msg("order repo: insert order")
		return nil, false, err
	}

	batch := &pgx.Batch{}
	for i, item := range o.Items {
		batch.Queue(`
INSERT INTO order_items (order_id, position, item_id, name, price, quantity, special_instructions)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
RETURNING id::text
`, o.ID, i, item.ItemID, item.Name, item.Price, item.Quantity, item.SpecialInstructions)
	}
	results := tx.SendBatch(ctx, batch)
	for i := range o.Items {
		if err := results.QueryRow().Scan(&o.Items[i].ID); err != nil {
			results.Close()
			return nil, false, fmt.Errorf("insert order item %s: %w", o.Items[i].ItemID, err)
		}
		o.Items[i].OrderID = o.ID
	}
	if err := results.Close(); err != nil {
		return nil, false, err
	}

	if _, err := tx.Exec(ctx, `UPDATE payment_sessions SET order_id = $1 WHERE id = $2`, o.ID, sessionRowID); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	r.logger.Info().Str("order_id", o.ID).Str("user_id", o.UserID).Int("items", len(o.Items)).Msg("order repo: order recorded")
	return &o, true, nil
}

func (r *postgresRepo) SetAddressSync(ctx context.Context, orderID, status, addressID string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET address_sync_status = $2,
    address_id = COALESCE(NULLIF($3, '')::uuid, address_id)
WHERE id = $1
`, orderID, status, addressID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, orderColumns+`WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("order repo: list")
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	index := map[string]int{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		o.Items = []domain.OrderItem{}
		index[o.ID] = len(orders)
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	items, err := loadItems(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return orders, nil
}

func (r *postgresRepo) PopularItems(ctx context.Context, limit int) ([]domain.PopularItem, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, `
SELECT name, SUM(quantity)::bigint AS qty
FROM order_items
GROUP BY name
ORDER BY qty DESC, name ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PopularItem
	for rows.Next() {
		var p domain.PopularItem
		if err := rows.Scan(&p.Name, &p.Quantity); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *postgresRepo) getOrder(ctx context.Context, q querier, id string) (*domain.Order, error) {
	o, err := scanOrder(q.QueryRow(ctx, orderColumns+`WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	items, err := loadItems(ctx, q, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func loadItems(ctx context.Context, q querier, orderIDs []string) ([]domain.OrderItem, error) {
	rows, err := q.Query(ctx, `
SELECT id::text, order_id::text, item_id, name, price, quantity, COALESCE(special_instructions, '')
FROM order_items
WHERE order_id::text = ANY($1)
ORDER BY order_id, position
`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemID, &it.Name, &it.Price, &it.Quantity, &it.SpecialInstructions); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(
		&o.ID, &o.UserID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.Street, &o.City, &o.State, &o.ZipCode, &o.AddressID,
		&o.Subtotal, &o.Tax, &o.DeliveryFee, &o.Total,
		&o.Status, &o.PaymentStatus, &o.PaymentIntentID, &o.AddressSyncStatus, &o.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}
