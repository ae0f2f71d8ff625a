package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcore/internal/events"
	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/transport"
)

type published struct {
	Topic string
	Key   string
	Event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *recordingPublisher) orderEvents(typ string) []events.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.OrderEvent
	for _, e := range p.events {
		if ev, ok := e.Event.(events.OrderEvent); ok && ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (p *recordingPublisher) inventoryEvents() []events.InventoryEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.InventoryEvent
	for _, e := range p.events {
		if ev, ok := e.Event.(events.InventoryEvent); ok {
			out = append(out, ev)
		}
	}
	return out
}

// memIdempotency stores uuid.Nil for a reserved key that has not completed.
type memIdempotency struct {
	mu   sync.Mutex
	keys map[string]uuid.UUID
}

func (m *memIdempotency) Reserve(_ context.Context, key string) (bool, uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.keys[key]; ok {
		return false, id, nil
	}
	m.keys[key] = uuid.Nil
	return true, uuid.Nil, nil
}

func (m *memIdempotency) Complete(_ context.Context, key string, orderID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = orderID
	return nil
}

func (m *memIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] == uuid.Nil {
		delete(m.keys, key)
	}
	return nil
}

// gatedIdempotency holds every Reserve call until the expected number of callers arrived.
type gatedIdempotency struct {
	*memIdempotency
	arrived sync.WaitGroup
}

func (g *gatedIdempotency) Reserve(ctx context.Context, key string) (bool, uuid.UUID, error) {
	g.arrived.Done()
	g.arrived.Wait()
	return g.memIdempotency.Reserve(ctx, key)
}

type testEnv struct {
	DB        *gorm.DB
	Repo      *repo.GormRepo
	Events    *recordingPublisher
	Idem      *memIdempotency
	Catalog   *CatalogService
	Inventory *InventoryService
	Cart      *CartService
	Orders    *OrderService
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repo.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)
	r := &repo.GormRepo{DB: db}
	pub := &recordingPublisher{}
	idem := &memIdempotency{keys: map[string]uuid.UUID{}}

	return &testEnv{
		DB:        db,
		Repo:      r,
		Events:    pub,
		Idem:      idem,
		Catalog:   &CatalogService{Repo: r},
		Inventory: &InventoryService{Repo: r, Events: pub, LowStockThreshold: 2},
		Cart:      &CartService{Repo: r},
		Orders: &OrderService{
			Repo:              r,
			Events:            pub,
			Idempotency:       idem,
			LowStockThreshold: 2,
		},
	}
}

func (env *testEnv) seedProduct(t *testing.T, name string, price, stock int64) *models.Product {
	t.Helper()
	p, err := env.Catalog.CreateProduct(context.Background(), transport.CreateProductRequest{
		Name:  name,
		Price: price,
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func (env *testEnv) stockOf(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	p, err := env.Repo.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (env *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.DB.Model(model).Count(&n).Error)
	return n
}

func testAddress() models.Address {
	return models.Address{
		Line1:      "1 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
	}
}
