package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/simpos-backend/api/middleware"
	"github.com/angelmondragon/simpos-backend/internal/audit"
	"github.com/angelmondragon/simpos-backend/internal/discounts"
	"github.com/angelmondragon/simpos-backend/internal/inventory"
	"github.com/angelmondragon/simpos-backend/internal/sales"
	"github.com/angelmondragon/simpos-backend/pkg/config"
	"github.com/angelmondragon/simpos-backend/pkg/db"
	"github.com/angelmondragon/simpos-backend/pkg/db/models"
	"github.com/angelmondragon/simpos-backend/pkg/enums"
	"github.com/angelmondragon/simpos-backend/pkg/logger"
	"github.com/angelmondragon/simpos-backend/pkg/metrics"
)

type memoryRedis struct {
	mu     sync.Mutex
	data   map[string]string
	counts map[string]int64
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: map[string]string{}, counts: map[string]int64{}}
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key], _ = value.(string)
	return true, nil
}

func (m *memoryRedis) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("test:idem:%s:%s", scope, id)
}

func (m *memoryRedis) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[scope]++
	return m.counts[scope] <= limit, m.counts[scope], nil
}

func (m *memoryRedis) Ping(context.Context) error { return nil }

type harness struct {
	handler http.Handler
	db      *gorm.DB
}

func newHarness(t *testing.T, mutations int) *harness {
	t.Helper()
	dsn := "file:routes_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(models.All()...))

	logg := logger.New(logger.Options{ServiceName: "routes-test", Output: io.Discard})
	client := db.NewFromGorm(conn)

	auditSvc, err := audit.NewService(audit.NewRepository(conn))
	require.NoError(t, err)
	stock := inventory.NewStore(conn)
	reg := prometheus.NewRegistry()
	salesSvc, err := sales.NewService(sales.ServiceParams{
		Repo:              sales.NewRepository(conn),
		TransactionRunner: client,
		Stock:             stock,
		Audit:             auditSvc,
		Discounts:         discounts.NewResolver(conn),
		Metrics:           metrics.NewSalesMetrics(reg),
		Logger:            logg,
		VATRate:           decimal.NewFromInt(21),
		CreditRestocks:    true,
	})
	require.NoError(t, err)

	cfg := &config.Config{
		App:       config.AppConfig{Env: "dev", CORSOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{Window: time.Minute, Mutations: mutations},
	}
	mem := newMemoryRedis()
	handler := NewRouter(cfg, logg, Dependencies{
		DB:          client,
		Redis:       mem,
		Idempotency: mem,
		RateLimiter: mem,
		Gatherer:    reg,
		Sales:       salesSvc,
		Stock:       stock,
		Audit:       auditSvc,
	})
	return &harness{handler: handler, db: conn}
}

func (h *harness) do(t *testing.T, method, path, body, key string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(middleware.UserIDHeader, "7")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) seedICCID(t *testing.T, code string) int64 {
	t.Helper()
	provider := models.Provider{Name: "provider-" + code}
	require.NoError(t, h.db.Create(&provider).Error)
	record := models.StockRecord{ICCID: code, ProviderID: provider.ID, Status: enums.StockStatusInStock}
	require.NoError(t, h.db.Create(&record).Error)
	return record.ID
}

func data(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	h := newHarness(t, 10)

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresUser(t *testing.T) {
	h := newHarness(t, 10)

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSaleLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t, 10)
	stockID := h.seedICCID(t, "8934071000000000001")

	body := fmt.Sprintf(`{"payment_method":"cash","discount":"3.00","items":[
		{"description":"SIM","price":"10.00","quantity":1,"iccid_id":%d},
		{"description":"Case","price":"5.00","quantity":2},
		{"description":"blank","price":"0","quantity":1}
	]}`, stockID)

	created := h.do(t, http.MethodPost, "/api/v1/sales", body, "sale-1")
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	saleID := int64(data(t, created)["sale_id"].(float64))

	replay := h.do(t, http.MethodPost, "/api/v1/sales", body, "sale-1")
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, created.Body.String(), replay.Body.String())

	var count int64
	require.NoError(t, h.db.Model(&models.Sale{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	missingKey := h.do(t, http.MethodPost, "/api/v1/sales", body, "")
	assert.Equal(t, http.StatusBadRequest, missingKey.Code)

	stock := h.do(t, http.MethodGet, fmt.Sprintf("/api/v1/stock/%d", stockID), "", "")
	require.Equal(t, http.StatusOK, stock.Code)
	assert.Equal(t, "sold", data(t, stock)["status"])

	detail := h.do(t, http.MethodGet, fmt.Sprintf("/api/v1/sales/%d", saleID), "", "")
	require.Equal(t, http.StatusOK, detail.Code)
	sale := data(t, detail)
	assert.Equal(t, "17", sale["total"])
	items := sale["items"].([]any)
	require.Len(t, items, 2)

	refund := h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sales/%d/refund", saleID), "", "refund-1")
	require.Equal(t, http.StatusOK, refund.Code, refund.Body.String())
	result := data(t, refund)
	assert.Equal(t, "refunded", result["status"])
	assert.Equal(t, "20", result["refunded"])

	cancel := h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sales/%d/cancel", saleID), `{"reason":"late"}`, "cancel-1")
	assert.Equal(t, http.StatusConflict, cancel.Code)

	auditPage := h.do(t, http.MethodGet, "/api/v1/audit?limit=1", "", "")
	require.Equal(t, http.StatusOK, auditPage.Code)
	page := data(t, auditPage)
	entries := page["entries"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "sale.refunded", entries[0].(map[string]any)["action"])
	assert.NotEmpty(t, page["next_cursor"])
}

func TestCreateSaleRejectsSubCentPrice(t *testing.T) {
	h := newHarness(t, 10)

	body := `{"payment_method":"card","items":[{"description":"Charger","price":"1.005","quantity":2}]}`
	rec := h.do(t, http.MethodPost, "/api/v1/sales", body, "sale-cents")
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var count int64
	require.NoError(t, h.db.Model(&models.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMutationsAreRateLimited(t *testing.T) {
	h := newHarness(t, 1)

	first := h.do(t, http.MethodPost, "/api/v1/sales/99/cancel", "", "a")
	assert.Equal(t, http.StatusNotFound, first.Code)

	second := h.do(t, http.MethodPost, "/api/v1/sales/99/cancel", "", "b")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	read := h.do(t, http.MethodGet, "/api/v1/sales/99", "", "")
	assert.Equal(t, http.StatusNotFound, read.Code)
}
