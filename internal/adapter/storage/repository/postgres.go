package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/cryptomart/payment-core/internal/adapter/storage"
	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
	"github.com/govalues/decimal"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository is the order-management collaborator backed by Postgres. The
// payment core reads pending orders and reports verdicts through it; order
// rows are mutated only via the compare-and-set transition.
type Repository struct {
	db *storage.DB
}

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

var orderColumns = []string{
	"id", "currency", "expected_amount", "address", "payment_ref",
	"observed_tx_ref", "confirmations", "status", "vendor_wallet", "created_at",
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	order := domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.Currency,
		&order.ExpectedAmount,
		&order.Address,
		&order.PaymentRef,
		&order.ObservedTxRef,
		&order.Confirmations,
		&order.Status,
		&order.VendorWallet,
		&order.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	statement := r.db.QueryBuilder.Insert("orders").
		Columns("currency", "expected_amount", "address", "payment_ref",
			"observed_tx_ref", "confirmations", "status", "vendor_wallet", "created_at").
		Values(order.Currency, order.ExpectedAmount, order.Address, order.PaymentRef,
			order.ObservedTxRef, order.Confirmations, order.Status, order.VendorWallet, order.CreatedAt).
		Suffix("RETURNING id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&order.ID)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}
	return order, nil
}

func (r *Repository) ReadOrder(ctx context.Context, orderID uint64) (*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": orderID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	return scanOrder(r.db.QueryRow(ctx, sql, args...))
}

func (r *Repository) ListOrdersByStatus(ctx context.Context, statuses []domain.OrderStatus) ([]*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"status": statuses}).
		OrderBy("created_at")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, order)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return list, nil
}

// TransitionOrder performs the atomic compare-and-set on (id, from). The
// guard lives in the WHERE clause: a row is updated only when the stored
// status still matches, so of two racing passes exactly one sees true.
func (r *Repository) TransitionOrder(ctx context.Context, orderID uint64,
	from, to domain.OrderStatus, update port.OrderUpdate) (bool, error) {
	if !from.CanTransition(to) {
		return false, nil
	}

	statement := r.db.QueryBuilder.Update("orders").
		Set("status", to).
		Where(sq.Eq{"id": orderID, "status": from})

	if update.ObservedTxRef != nil {
		// The first observed reference is the idempotency anchor; never let a
		// later evaluation overwrite it.
		statement = statement.Set("observed_tx_ref",
			sq.Expr("CASE WHEN observed_tx_ref = '' THEN ? ELSE observed_tx_ref END", *update.ObservedTxRef))
	}
	if update.Confirmations != nil {
		statement = statement.Set("confirmations",
			sq.Expr("GREATEST(confirmations, ?)", *update.Confirmations))
	}

	sql, args, err := statement.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (r *Repository) CreateCommissionRecord(ctx context.Context, rec *domain.CommissionRecord) error {
	statement := r.db.QueryBuilder.Insert("commission_records").
		Columns("order_id", "currency", "amount", "created_at").
		Values(rec.OrderID, rec.Currency, rec.Amount, rec.CreatedAt)

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrConflictingData
		}
		return err
	}
	return nil
}

func (r *Repository) CreatePayout(ctx context.Context, payout *domain.Payout) error {
	statement := r.db.QueryBuilder.Insert("payouts").
		Columns("order_id", "currency", "amount", "status", "created_at").
		Values(payout.OrderID, payout.Currency, payout.Amount, payout.Status, payout.CreatedAt)

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *Repository) PlatformEarnings(ctx context.Context) (map[domain.Currency]decimal.Decimal, error) {
	statement := r.db.QueryBuilder.
		Select("currency", "COALESCE(SUM(amount), 0)").
		From("commission_records").
		GroupBy("currency")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	earnings := make(map[domain.Currency]decimal.Decimal)
	for rows.Next() {
		var currency domain.Currency
		var total decimal.Decimal
		if err := rows.Scan(&currency, &total); err != nil {
			return nil, err
		}
		earnings[currency] = total
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return earnings, nil
}
