// Package sqlite stores orders in SQLite. Lines are kept as a JSON array on
// the order row; orders are written once and only their status changes.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/food-storefront/internal/ordering"
	"github.com/jcmexdev/food-storefront/internal/pkg/sqlitedb"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id               TEXT PRIMARY KEY,
    number           TEXT NOT NULL,
    session_id       TEXT NOT NULL DEFAULT '',
    lines            TEXT NOT NULL,

    zone             TEXT NOT NULL,
    promo_code       TEXT,
    -- Money as decimal strings, never REAL.
    subtotal         TEXT NOT NULL,
    delivery_fee     TEXT NOT NULL,
    discount         TEXT NOT NULL,
    total            TEXT NOT NULL,

    full_name        TEXT NOT NULL,
    phone            TEXT NOT NULL,
    email            TEXT NOT NULL,
    address          TEXT NOT NULL,
    payment_method   TEXT NOT NULL,

    status           TEXT NOT NULL,
    idempotency_key  TEXT,
    request_id       TEXT,
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_number ON orders(number);
CREATE INDEX IF NOT EXISTS idx_orders_session ON orders(session_id, created_at);
`

var _ ordering.Repository = (*Repository)(nil)

type Repository struct {
	db *sql.DB
}

// New applies the orders schema to db.
func New(db *sql.DB) (*Repository, error) {
	if err := sqlitedb.ApplySchema(db, schema); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Save(ctx context.Context, o *ordering.Order) error {
	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("sqlite: encode lines for order %q: %w", o.ID, err)
	}

	const q = `
		INSERT INTO orders
			(id, number, session_id, lines, zone, promo_code, subtotal, delivery_fee, discount, total,
			 full_name, phone, email, address, payment_method, status, idempotency_key, request_id,
			 created_at, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, q,
		o.ID,
		o.Number,
		o.SessionID,
		string(lines),
		o.Zone,
		sqlitedb.NullableString(o.PromoCode),
		o.Subtotal.String(),
		o.DeliveryFee.String(),
		o.Discount.String(),
		o.Total.String(),
		o.Details.FullName,
		o.Details.Phone,
		o.Details.Email,
		o.Details.Address,
		string(o.Payment),
		string(o.Status),
		sqlitedb.NullableString(o.IdempotencyKey),
		sqlitedb.NullableString(o.RequestID),
		sqlitedb.FormatTime(o.CreatedAt),
		sqlitedb.FormatTime(o.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: orders.number") {
			return fmt.Errorf("sqlite: save order %q: %w: %s", o.ID, ordering.ErrDuplicateNumber, o.Number)
		}
		return fmt.Errorf("sqlite: save order %q: %w", o.ID, err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*ordering.Order, error) {
	const q = `
		SELECT id, number, session_id, lines, zone, COALESCE(promo_code, ''),
		       subtotal, delivery_fee, discount, total,
		       full_name, phone, email, address, payment_method, status,
		       COALESCE(idempotency_key, ''), COALESCE(request_id, ''), created_at, updated_at
		FROM   orders
		WHERE  id = ?`

	var (
		o                              ordering.Order
		lines                          string
		subtotal, fee, discount, total string
		createdAt, updatedAt           string
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&o.ID,
		&o.Number,
		&o.SessionID,
		&lines,
		&o.Zone,
		&o.PromoCode,
		&subtotal,
		&fee,
		&discount,
		&total,
		&o.Details.FullName,
		&o.Details.Phone,
		&o.Details.Email,
		&o.Details.Address,
		&o.Payment,
		&o.Status,
		&o.IdempotencyKey,
		&o.RequestID,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: order %q: %w", id, ordering.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order %q: %w", id, err)
	}

	if err := json.Unmarshal([]byte(lines), &o.Lines); err != nil {
		return nil, fmt.Errorf("sqlite: decode lines for order %q: %w", id, err)
	}
	for _, m := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&o.Subtotal, subtotal},
		{&o.DeliveryFee, fee},
		{&o.Discount, discount},
		{&o.Total, total},
	} {
		if *m.dst, err = decimal.NewFromString(m.src); err != nil {
			return nil, fmt.Errorf("sqlite: decode amount for order %q: %w", id, err)
		}
	}
	if o.CreatedAt, err = sqlitedb.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = sqlitedb.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status ordering.Status) error {
	const q = `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, q, string(status), sqlitedb.FormatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("sqlite: update status of order %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update status of order %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("sqlite: order %q: %w", id, ordering.ErrNotFound)
	}
	return nil
}
