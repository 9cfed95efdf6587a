package order

import (
	"context"
	"strings"
	"time"

	"ordermgmt-be/internal/db"
	"ordermgmt-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	CreateOrder(ctx context.Context, items []CartItem, userID string) (*Receipt, error)
	MarkDone(ctx context.Context, orderID int64) (*TransitionResult, error)
	MarkCompleted(ctx context.Context, orderID int64) (*TransitionResult, error)
	ListPending(ctx context.Context) ([]*Order, error)
	ListDone(ctx context.Context) ([]*Order, error)
}

// Recorder receives order outcome metrics.
type Recorder interface {
	OrderCreated()
	OrderFailed(operation string, code int)
	StatusChanged(status string)
	ObserveTx(operation string, d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) OrderCreated()                   {}
func (noopRecorder) OrderFailed(string, int)         {}
func (noopRecorder) StatusChanged(string)            {}
func (noopRecorder) ObserveTx(string, time.Duration) {}

type service struct {
	repo     Repository
	events   Publisher
	recorder Recorder
	now      func() time.Time
	location *time.Location
	retries  int
}

type Option func(*service)

func WithPublisher(p Publisher) Option {
	return func(s *service) {
		if p != nil {
			s.events = p
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *service) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone whose calendar day scopes order numbers.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithRetries sets how many extra attempts CreateOrder makes after an
// order_no unique violation.
func WithRetries(n int) Option {
	return func(s *service) {
		if n >= 0 {
			s.retries = n
		}
	}
}

func NewService(repo Repository, opts ...Option) Service {
	s := &service{
		repo:     repo,
		events:   noopPublisher{},
		recorder: noopRecorder{},
		now:      time.Now,
		location: time.UTC,
		retries:  3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) today() string {
	return s.now().In(s.location).Format(DateLayout)
}

func validateCart(items []CartItem, userID string) error {
	if len(items) == 0 {
		return validationError("Invalid cart items")
	}
	if strings.TrimSpace(userID) == "" {
		return validationError("User Id invalid")
	}
	for i, item := range items {
		if item.ProductID <= 0 {
			return validationError("Cart item %d has an invalid product_id", i)
		}
		if !item.Quantity.IsPositive() {
			return validationError("Cart item %d must have a positive quantity", i)
		}
		if !item.Price.IsPositive() {
			return validationError("Cart item %d must have a positive price", i)
		}
	}
	return nil
}

func (s *service) CreateOrder(ctx context.Context, items []CartItem, userID string) (*Receipt, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.String("userid", userID),
		zap.Int("item_count", len(items)),
	)

	if err := validateCart(items, userID); err != nil {
		log.Warn("invalid order input", zap.Error(err))
		s.recorder.OrderFailed("create", int(CodeValidation))
		return nil, err
	}

	total := CalculateTotal(items)
	day := s.today()

	var (
		receipt *Receipt
		err     error
	)
	for attempt := 0; ; attempt++ {
		receipt, err = s.createOnce(ctx, items, userID, day, total)
		if err == nil {
			break
		}
		if attempt < s.retries && db.IsUniqueViolation(err) {
			log.Warn("order_no already taken, retrying",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}
		log.Error("failed to create order", zap.Error(err))
		s.recorder.OrderFailed("create", int(CodeOf(err)))
		return nil, err
	}

	s.recorder.OrderCreated()
	s.publish(ctx, NewOrderEvent(receipt, s.now()))

	log.Info("order created",
		zap.Int64("order_id", receipt.OrderID),
		zap.Int64("order_no", receipt.OrderNo),
		zap.String("order_total", receipt.Total.StringFixed(2)),
	)
	return receipt, nil
}

func (s *service) createOnce(ctx context.Context, items []CartItem, userID, day string, total decimal.Decimal) (*Receipt, error) {
	started := time.Now()
	defer func() { s.recorder.ObserveTx("create", time.Since(started)) }()

	var receipt *Receipt
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		orderNo, err := tx.NextOrderNo(ctx, day)
		if err != nil {
			return err
		}

		orderID, err := tx.InsertOrder(ctx, &Order{
			OrderNo:   orderNo,
			UserID:    userID,
			OrderDate: day,
			Total:     total,
			Status:    StatusPending,
		})
		if err != nil {
			return err
		}

		if err := tx.InsertItems(ctx, orderID, items); err != nil {
			return err
		}

		receipt = &Receipt{
			OrderID:   orderID,
			OrderNo:   orderNo,
			OrderDate: day,
			Total:     total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *service) MarkDone(ctx context.Context, orderID int64) (*TransitionResult, error) {
	return s.transition(ctx, orderID, StatusDone)
}

func (s *service) MarkCompleted(ctx context.Context, orderID int64) (*TransitionResult, error) {
	return s.transition(ctx, orderID, StatusCompleted)
}

func (s *service) transition(ctx context.Context, orderID int64, to Status) (*TransitionResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "transition"),
		zap.Int64("order_id", orderID),
		zap.String("target_status", string(to)),
	)

	operation := "mark_" + string(to)
	if orderID <= 0 {
		s.recorder.OrderFailed(operation, int(CodeValidation))
		return nil, validationError("Invalid order id")
	}

	from, ok := to.Previous()
	if !ok {
		return nil, newError(CodeInvalidState, "Cannot move order to "+string(to), nil)
	}

	started := time.Now()
	var result *TransitionResult
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		orderNo, current, err := tx.GetOrderState(ctx, orderID)
		if err != nil {
			return err
		}
		if err := current.CanTransitionTo(to); err != nil {
			return err
		}
		if err := tx.UpdateStatus(ctx, orderID, from, to); err != nil {
			return err
		}
		result = &TransitionResult{OrderID: orderID, OrderNo: orderNo, Status: to}
		return nil
	})
	s.recorder.ObserveTx(operation, time.Since(started))

	if err != nil {
		log.Warn("status transition failed", zap.Error(err))
		s.recorder.OrderFailed(operation, int(CodeOf(err)))
		return nil, err
	}

	s.recorder.StatusChanged(string(to))
	s.publish(ctx, StatusChangedEvent(result, s.now()))

	log.Info("order status updated", zap.Int64("order_no", result.OrderNo))
	return result, nil
}

func (s *service) ListPending(ctx context.Context) ([]*Order, error) {
	return s.list(ctx, StatusPending)
}

func (s *service) ListDone(ctx context.Context) ([]*Order, error) {
	return s.list(ctx, StatusDone)
}

func (s *service) list(ctx context.Context, status Status) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "list"),
		zap.String("status", string(status)),
	)

	rows, err := s.repo.ListByStatus(ctx, status, s.today())
	if err != nil {
		log.Error("failed to list orders", zap.Error(err))
		return nil, err
	}

	orders := GroupRows(rows)
	for _, o := range orders {
		o.Status = status
	}

	log.Debug("orders listed", zap.Int("count", len(orders)))
	return orders, nil
}

func (s *service) publish(ctx context.Context, evt Event) {
	if err := s.events.Publish(ctx, evt); err != nil {
		logger.FromCtx(ctx).Warn("event publish failed",
			zap.String("event", evt.Name),
			zap.String("key", evt.Key),
			zap.Error(err),
		)
	}
}
