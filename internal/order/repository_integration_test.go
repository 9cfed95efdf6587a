//go:build integration

package order

import (
	"context"
	"database/sql"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"ordermgmt-be/internal/db"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresIntegrationSuite exercises the allocators under real concurrent
// transactions against PostgreSQL.
type PostgresIntegrationSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *sql.DB
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("orders"),
		postgres.WithUsername("orders"),
		postgres.WithPassword("orders"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	conn, err := sql.Open("postgres", dsn)
	s.Require().NoError(err)
	conn.SetMaxOpenConns(10)
	s.db = conn

	s.Require().NoError(db.Migrate(conn, "up", filepath.Join("..", "..", "migrations", "postgres")))

	_, err = conn.Exec(`INSERT INTO inventory_category (category_id, category_name) VALUES (1, 'Drinks')`)
	s.Require().NoError(err)
	_, err = conn.Exec(`INSERT INTO products (product_id, product_name, price, category_id) VALUES (7, 'Tea', 2.50, 1), (8, 'Cake', 3, 1)`)
	s.Require().NoError(err)
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, err := s.db.Exec(`TRUNCATE TABLE order_cart, order_master, order_sequence`)
	s.Require().NoError(err)
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}

func (s *PostgresIntegrationSuite) createConcurrently(svc Service, workers int) []int64 {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		got []int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			receipt, err := svc.CreateOrder(context.Background(), []CartItem{item(7, "2.50", "2")}, "u")
			if !s.NoError(err) {
				return
			}
			mu.Lock()
			got = append(got, receipt.OrderNo)
			mu.Unlock()
		}()
	}
	wg.Wait()
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	return got
}

func expectedNumbers(n int) []int64 {
	out := make([]int64, 0, n)
	for i := int64(1); i <= int64(n); i++ {
		out = append(out, i)
	}
	return out
}

func (s *PostgresIntegrationSuite) clock() Option {
	return WithClock(func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) })
}

func (s *PostgresIntegrationSuite) TestCounterAllocatorIsGapless() {
	svc := NewService(NewRepository(s.db, CounterAllocator{}), s.clock())
	s.Equal(expectedNumbers(20), s.createConcurrently(svc, 20))
}

func (s *PostgresIntegrationSuite) TestMaxAllocatorRetriesConflicts() {
	svc := NewService(NewRepository(s.db, MaxAllocator{}), s.clock(), WithRetries(25))
	s.Equal(expectedNumbers(10), s.createConcurrently(svc, 10))
}

func (s *PostgresIntegrationSuite) TestListAndTransitions() {
	ctx := context.Background()
	svc := NewService(NewRepository(s.db, CounterAllocator{}), s.clock())

	receipt, err := svc.CreateOrder(ctx, []CartItem{item(7, "2.50", "3")}, "u-1")
	s.Require().NoError(err)
	s.Equal("7.50", receipt.Total.StringFixed(2))

	pending, err := svc.ListPending(ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal("2024-05-01", pending[0].OrderDate)
	s.Equal("Tea", pending[0].Items[0].ProductName)

	_, err = svc.MarkDone(ctx, receipt.OrderID)
	s.Require().NoError(err)
	_, err = svc.MarkDone(ctx, receipt.OrderID)
	s.ErrorIs(err, ErrInvalidState)
	_, err = svc.MarkCompleted(ctx, receipt.OrderID)
	s.Require().NoError(err)
}

func (s *PostgresIntegrationSuite) TestStoredItemsKeepSubCentPrices() {
	ctx := context.Background()
	svc := NewService(NewRepository(s.db, CounterAllocator{}), s.clock())

	receipt, err := svc.CreateOrder(ctx, []CartItem{item(7, "10.005", "2"), item(8, "3", "1")}, "u-1")
	s.Require().NoError(err)
	s.Equal("23.01", receipt.Total.StringFixed(2))

	pending, err := svc.ListPending(ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Require().Len(pending[0].Items, 2)
	s.True(pending[0].Items[0].Price.Equal(decimal.RequireFromString("10.005")))

	sum := decimal.Zero
	for _, li := range pending[0].Items {
		sum = sum.Add(li.Price.Mul(li.Quantity))
	}
	s.Equal(receipt.Total.StringFixed(2), sum.Round(2).StringFixed(2))
	s.Equal(receipt.Total.StringFixed(2), pending[0].Total.StringFixed(2))
}

func (s *PostgresIntegrationSuite) TestRacingTransitionsLoseWithInvalidState() {
	ctx := context.Background()
	svc := NewService(NewRepository(s.db, CounterAllocator{}), s.clock())

	receipt, err := svc.CreateOrder(ctx, []CartItem{item(7, "2.50", "1")}, "u-1")
	s.Require().NoError(err)

	const racers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.MarkDone(ctx, receipt.OrderID)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, ErrInvalidState)
	}
	s.Equal(1, succeeded)
}
