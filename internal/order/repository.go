package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ordermgmt-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	// WithinTx runs fn on one dedicated connection inside one transaction.
	// The transaction commits only if fn returns nil, and is rolled back on
	// every other path, panics included. The connection is released once.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	ListByStatus(ctx context.Context, status Status, day string) ([]Row, error)
	PruneSequences(ctx context.Context, before string) (int64, error)
}

// Tx is the set of statements available inside WithinTx.
type Tx interface {
	NextOrderNo(ctx context.Context, day string) (int64, error)
	InsertOrder(ctx context.Context, o *Order) (int64, error)
	InsertItems(ctx context.Context, orderID int64, items []CartItem) error
	GetOrderState(ctx context.Context, orderID int64) (int64, Status, error)
	UpdateStatus(ctx context.Context, orderID int64, from, to Status) error
}

type repository struct {
	db        *sql.DB
	allocator Allocator
	lockRows  bool
}

type RepositoryOption func(*repository)

// WithoutRowLocks drops FOR UPDATE from state reads. SQLite has no row locks;
// its single writer already serializes transitions.
func WithoutRowLocks() RepositoryOption {
	return func(r *repository) { r.lockRows = false }
}

func NewRepository(db *sql.DB, allocator Allocator, opts ...RepositoryOption) Repository {
	if allocator == nil {
		allocator = CounterAllocator{}
	}
	r := &repository{db: db, allocator: allocator, lockRows: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *repository) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "WithinTx"),
	)

	conn, err := r.db.Conn(ctx)
	if err != nil {
		log.Error("failed to acquire connection", zap.Error(err))
		return newError(CodeConnection, ErrConnection.Message, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Warn("failed to release connection", zap.Error(cerr))
		}
	}()

	sqlTx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return newError(CodeTxInit, ErrTxInit.Message, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error("rollback failed", zap.Error(rbErr))
			return
		}
		log.Debug("transaction rolled back")
	}()

	if err := fn(&txRepository{q: sqlTx, allocator: r.allocator, lockRows: r.lockRows}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		log.Error("failed to commit transaction", zap.Error(err))
		return newError(CodeCommit, ErrCommit.Message, err)
	}
	committed = true

	return nil
}

const listByStatusQuery = `
	SELECT
		om.order_id, om.order_no, om.userid, om.order_date, om.order_total,
		oc.product_id, p.product_name, oc.quantity, oc.price
	FROM order_master om
	JOIN order_cart oc ON om.order_id = oc.order_id
	JOIN products p ON oc.product_id = p.product_id
	WHERE om.status = $1 AND om.order_date = $2
	ORDER BY om.order_date ASC, om.order_no ASC, oc.line_no ASC
`

func (r *repository) ListByStatus(ctx context.Context, status Status, day string) ([]Row, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListByStatus"),
		zap.String("status", string(status)),
		zap.String("order_date", day),
	)

	message := fmt.Sprintf("Error fetching today's %s orders", status)

	rows, err := r.db.QueryContext(ctx, listByStatusQuery, string(status), day)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, newError(CodeQuery, message, err)
	}
	defer rows.Close()

	result := make([]Row, 0)
	for rows.Next() {
		var (
			row  Row
			date dayValue
		)
		if err := rows.Scan(
			&row.OrderID, &row.OrderNo, &row.UserID, &date, &row.Total,
			&row.ProductID, &row.ProductName, &row.Quantity, &row.Price,
		); err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, newError(CodeQuery, message, err)
		}
		row.OrderDate = string(date)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, newError(CodeQuery, message, err)
	}

	log.Debug("orders fetched", zap.Int("rows", len(result)))
	return result, nil
}

func (r *repository) PruneSequences(ctx context.Context, before string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM order_sequence WHERE order_date < $1`, before)
	if err != nil {
		return 0, newError(CodeQuery, "Failed to prune order sequences", err)
	}
	return res.RowsAffected()
}

type txRepository struct {
	q         Querier
	allocator Allocator
	lockRows  bool
}

func (t *txRepository) NextOrderNo(ctx context.Context, day string) (int64, error) {
	next, err := t.allocator.Next(ctx, t.q, day)
	if err != nil {
		logger.FromCtx(ctx).Error("order_no lookup failed",
			zap.String("order_date", day),
			zap.Error(err),
		)
		return 0, newError(CodeSequenceLookup, ErrSequenceLookup.Message, err)
	}
	return next, nil
}

func (t *txRepository) InsertOrder(ctx context.Context, o *Order) (int64, error) {
	status := o.Status
	if status == "" {
		status = StatusPending
	}

	var id int64
	err := t.q.QueryRowContext(ctx, `
		INSERT INTO order_master (order_no, userid, order_date, order_total, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING order_id
	`, o.OrderNo, o.UserID, o.OrderDate, o.Total, string(status)).Scan(&id)
	if err != nil {
		logger.FromCtx(ctx).Error("order header insert failed",
			zap.Int64("order_no", o.OrderNo),
			zap.Error(err),
		)
		return 0, newError(CodeInsert, "Error inserting order", err)
	}
	if id <= 0 {
		return 0, newError(CodeInsert, "Error inserting order", fmt.Errorf("no order_id returned"))
	}
	return id, nil
}

func (t *txRepository) InsertItems(ctx context.Context, orderID int64, items []CartItem) error {
	if err := insertCartItems(ctx, t.q, orderID, items); err != nil {
		logger.FromCtx(ctx).Error("cart items insert failed",
			zap.Int64("order_id", orderID),
			zap.Int("item_count", len(items)),
			zap.Error(err),
		)
		return newError(CodeInsert, "Error inserting cart items", err)
	}
	return nil
}

const orderStateQuery = `SELECT order_no, status FROM order_master WHERE order_id = $1`

// GetOrderState reads the order under a row lock, so a racing transition
// waits for the winner to commit and then sees its status.
func (t *txRepository) GetOrderState(ctx context.Context, orderID int64) (int64, Status, error) {
	var (
		orderNo int64
		status  string
	)
	query := orderStateQuery
	if t.lockRows {
		query += " FOR UPDATE"
	}
	err := t.q.QueryRowContext(ctx, query, orderID).Scan(&orderNo, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", newError(CodeNotFound, ErrOrderNotFound.Message, nil)
	}
	if err != nil {
		return 0, "", newError(CodeQuery, "Error fetching order", err)
	}
	return orderNo, Status(status), nil
}

// UpdateStatus moves the order only if it is still in from, so a concurrent
// transition that got there first leaves zero rows affected.
func (t *txRepository) UpdateStatus(ctx context.Context, orderID int64, from, to Status) error {
	message := fmt.Sprintf("Failed to update order status to %s", to)

	res, err := t.q.ExecContext(ctx,
		`UPDATE order_master SET status = $1 WHERE order_id = $2 AND status = $3`,
		string(to), orderID, string(from),
	)
	if err != nil {
		return newError(CodeUpdate, message, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return newError(CodeUpdate, message, err)
	}
	if affected == 0 {
		return newError(CodeUpdate, message, nil)
	}
	return nil
}

// dayValue scans a DATE column into its YYYY-MM-DD form regardless of whether
// the driver hands back time.Time or text.
type dayValue string

func (d *dayValue) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = dayValue(v.Format(DateLayout))
	case string:
		*d = dayValue(truncateDay(v))
	case []byte:
		*d = dayValue(truncateDay(string(v)))
	default:
		return fmt.Errorf("unsupported order_date type %T", src)
	}
	return nil
}

func truncateDay(s string) string {
	if len(s) > len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}
