package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/quickcart/order-svc/internal/service/models/currency"
	"github.com/quickcart/order-svc/internal/service/models/order"
	"github.com/quickcart/order-svc/internal/service/models/orderitem"
)

// ErrOrderNotFound is returned when no order exists for the requested id.
var ErrOrderNotFound = errors.New("order not found")

// ErrStatusConflict is returned when a conditional update matched no row:
// the order left its expected status between read and write.
var ErrStatusConflict = errors.New("order status changed concurrently")

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id              uuid.UUID `db:"id"`
	CustomerId      int64     `db:"customer_id"`
	Status          int16     `db:"status"`
	TotalPriceCents int64     `db:"total_price_cents"`
	PaidCents       int64     `db:"paid_cents"`
	Currency        string    `db:"currency"`
	CancelReason    string    `db:"cancel_reason"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(o.Currency)
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:              o.Id,
		CustomerID:      o.CustomerId,
		Status:          status,
		TotalPriceCents: o.TotalPriceCents,
		PaidCents:       o.PaidCents,
		Currency:        cur,
		CancelReason:    o.CancelReason,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		OrderItems:      []orderitem.OrderItem{}, // Will be populated separately
	}, nil
}

// OrderDalFromModel converts service layer Order model to OrderDal.
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		Id:              o.ID,
		CustomerId:      o.CustomerID,
		Status:          int16(o.Status),
		TotalPriceCents: o.TotalPriceCents,
		PaidCents:       o.PaidCents,
		Currency:        o.Currency.String(),
		CancelReason:    o.CancelReason,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx.
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var orderColumns = []string{
	"id",
	"customer_id",
	"status",
	"total_price_cents",
	"paid_cents",
	"currency",
	"cancel_reason",
	"created_at",
	"updated_at",
}

// Insert stores a single order header.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) error {
	dal := OrderDalFromModel(&o)

	query, args, err := r.sb.Insert("orders").
		Columns(orderColumns...).
		Values(
			dal.Id,
			dal.CustomerId,
			dal.Status,
			dal.TotalPriceCents,
			dal.PaidCents,
			dal.Currency,
			dal.CancelReason,
			pgtype.Timestamptz{Time: dal.CreatedAt, Valid: true},
			pgtype.Timestamptz{Time: dal.UpdatedAt, Valid: !dal.UpdatedAt.IsZero()},
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// GetByID retrieves a single order header by id.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query, args, err := r.sb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	row := r.conn.QueryRow(ctx, query, args...)

	dal, err := scanOrderRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return dal.ToModel()
}

// QueryByStatus retrieves up to limit order headers in the given status,
// oldest first, so a continuous stream of newer orders cannot starve old ones.
func (r *PostgresOrderRepository) QueryByStatus(
	ctx context.Context,
	status order.Status,
	limit int,
) ([]order.Order, error) {
	query, args, err := r.sb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"status": int16(status)}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders by status: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// UpdateStatus persists the header fields of a mutated order, conditional on
// the status it was read in. Zero rows affected means a concurrent writer won.
func (r *PostgresOrderRepository) UpdateStatus(
	ctx context.Context,
	o order.Order,
	from order.Status,
) error {
	query, args, err := r.sb.Update("orders").
		Set("status", int16(o.Status)).
		Set("cancel_reason", o.CancelReason).
		Set("updated_at", pgtype.Timestamptz{Time: o.UpdatedAt, Valid: true}).
		Where(sq.Eq{"id": o.ID}).
		Where(sq.Eq{"status": int16(from)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}

	return nil
}

// Query retrieves order headers based on filter criteria.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	query := r.sb.Select(orderColumns...).
		From("orders").
		OrderBy("created_at ASC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.CustomerIds) > 0 {
		query = query.Where(sq.Eq{"customer_id": filter.CustomerIds})
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]int16, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = int16(s)
		}
		query = query.Where(sq.Eq{"status": statuses})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func scanOrderRow(row pgx.Row) (*OrderDal, error) {
	var dal OrderDal
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&dal.Id,
		&dal.CustomerId,
		&dal.Status,
		&dal.TotalPriceCents,
		&dal.PaidCents,
		&dal.Currency,
		&dal.CancelReason,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	dal.CreatedAt = createdAt.Time
	dal.UpdatedAt = updatedAt.Time

	return &dal, nil
}

func collectOrders(rows pgx.Rows) ([]order.Order, error) {
	var result []order.Order
	for rows.Next() {
		dal, err := scanOrderRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
