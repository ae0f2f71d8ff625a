package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcore/internal/events"
	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/internal/transport"
	"github.com/Skotchmaster/shopcore/pkg/tokens"
)

var testSecret = []byte("test-jwt-secret")

type testEnv struct {
	T    *testing.T
	E    *echo.Echo
	DB   *gorm.DB
	Repo *repo.GormRepo
	Deps *Deps
}

func InitTestDB(t *testing.T) *gorm.DB {
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
	db := InitTestDB(t)
	r := &repo.GormRepo{DB: db}

	orders := &service.OrderService{Repo: r, Events: events.Nop{}, LowStockThreshold: 5}
	deps := &Deps{
		CatalogHandler:   &CatalogHTTP{Svc: &service.CatalogService{Repo: r}},
		InventoryHandler: &InventoryHTTP{Svc: &service.InventoryService{Repo: r, Events: events.Nop{}, LowStockThreshold: 5}, DefaultThreshold: 5},
		CartHandler:      &CartHTTP{Svc: &service.CartService{Repo: r}, Orders: orders},
		OrderHandler:     &OrderHTTP{Svc: orders},
		AnalyticsHandler: &AnalyticsHTTP{Svc: &service.AnalyticsService{Aggregator: &service.ScanAggregator{Repo: r}}},
		JWTSecret:        testSecret,
	}

	e := echo.New()
	Register(e, deps)
	return &testEnv{T: t, E: e, DB: db, Repo: r, Deps: deps}
}

func (env *testEnv) token(userID, role string) string {
	env.T.Helper()
	tok, err := tokens.NewAccessToken(testSecret, userID, role, time.Now().Add(time.Hour))
	require.NoError(env.T, err)
	return tok
}

// do sends the request through the router, so auth middleware runs.
func (env *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.T.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doJSONRequest(method, path string, body any) (*httptest.ResponseRecorder, echo.Context) {
	env.T.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func (env *testEnv) seedProduct(name string, price, stock int64) *models.Product {
	env.T.Helper()
	p, err := env.Deps.CatalogHandler.Svc.CreateProduct(env.T.Context(), transport.CreateProductRequest{
		Name:  name,
		Price: price,
		Stock: stock,
	})
	require.NoError(env.T, err)
	return p
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
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
