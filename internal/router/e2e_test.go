//go:build integration

package router

// End-to-end tests of the HTTP surface with real Postgres + Redis via
// testcontainers. Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/config"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/infra"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/repository"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/scan"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, operator string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if operator != "" {
		req.Header.Set("X-Operator", operator)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Setup ────────────────────────────────────────────────────────────────────

func setupTestEnv(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("warestock_test"),
		tcPostgres.WithUsername("warestock"),
		tcPostgres.WithPassword("warestock"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		WorkerPoolSize:     1,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		ScanPollIntervalMS: 50,
		ScanSessionTTLMin:  15,
		ReportStoragePath:  t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	products := service.NewProductService(repository.NewProductRepository(db), rdb)
	registry := scan.NewRegistry(nil, nil, products, cfg.ScanPollInterval(), cfg.ScanSessionTTL())

	srv := httptest.NewServer(New(cfg, db, rdb, registry))
	t.Cleanup(srv.Close)
	return srv
}

func createTestProduct(t *testing.T, srv *httptest.Server, name, barcode string, quantity, minStock int) string {
	t.Helper()
	resp := do(t, srv, "POST", "/v1/products", jsonBody(t, map[string]any{
		"barcode":   barcode,
		"name":      name,
		"category":  "Gaseosas",
		"unit":      "botella",
		"quantity":  quantity,
		"min_stock": minStock,
	}), "maria")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &created)
	require.NotEmpty(t, created.ID)
	return created.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_ScanCommitCycle(t *testing.T) {
	srv := setupTestEnv(t)
	createTestProduct(t, srv, "Coca-Cola 2L", "7790895000430", 50, 12)

	// Open a manual session (no camera on the server side).
	resp := do(t, srv, "POST", "/v1/scan/sessions", jsonBody(t, map[string]string{"mode": "manual"}), "maria")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sess struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	decodeJSON(t, resp, &sess)
	assert.Equal(t, "idle", sess.State)

	// Type the barcode.
	resp = do(t, srv, "POST", fmt.Sprintf("/v1/scan/sessions/%s/code", sess.ID),
		jsonBody(t, map[string]string{"barcode": "7790895000430"}), "maria")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var resolved struct {
		State   string `json:"state"`
		Product struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
		} `json:"product"`
	}
	decodeJSON(t, resp, &resolved)
	assert.Equal(t, "product_resolved", resolved.State)
	assert.Equal(t, "Coca-Cola 2L", resolved.Product.Name)

	// Bump the selector to 20 and commit an add.
	resp = do(t, srv, "POST", fmt.Sprintf("/v1/scan/sessions/%s/quantity", sess.ID),
		jsonBody(t, map[string]any{"op": "set", "value": 20}), "maria")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, srv, "POST", fmt.Sprintf("/v1/scan/sessions/%s/commit", sess.ID),
		jsonBody(t, map[string]any{"type": "add"}), "maria")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var committed struct {
		Product struct {
			Quantity int  `json:"quantity"`
			LowStock bool `json:"low_stock"`
		} `json:"product"`
		Journaled bool `json:"journaled"`
	}
	decodeJSON(t, resp, &committed)
	assert.Equal(t, 70, committed.Product.Quantity)
	assert.False(t, committed.Product.LowStock)
	assert.True(t, committed.Journaled)

	// The audit trail carries exactly this mutation.
	resp = do(t, srv, "GET", "/v1/changes?type=add", nil, "maria")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var changes struct {
		Changes []struct {
			Quantity         int    `json:"quantity"`
			PreviousQuantity int    `json:"previous_quantity"`
			NewQuantity      int    `json:"new_quantity"`
			Operator         string `json:"operator"`
		} `json:"changes"`
		Total int64 `json:"total"`
	}
	decodeJSON(t, resp, &changes)
	require.EqualValues(t, 1, changes.Total)
	assert.Equal(t, 20, changes.Changes[0].Quantity)
	assert.Equal(t, 50, changes.Changes[0].PreviousQuantity)
	assert.Equal(t, 70, changes.Changes[0].NewQuantity)
	assert.Equal(t, "maria", changes.Changes[0].Operator)

	// Close the session; a second lookup 404s.
	resp = do(t, srv, "DELETE", fmt.Sprintf("/v1/scan/sessions/%s", sess.ID), nil, "maria")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	resp = do(t, srv, "GET", fmt.Sprintf("/v1/scan/sessions/%s", sess.ID), nil, "maria")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_RemoveInsufficientStock(t *testing.T) {
	srv := setupTestEnv(t)
	createTestProduct(t, srv, "Agua Mineral 1.5L", "7790742000117", 3, 1)

	resp := do(t, srv, "POST", "/v1/scan/sessions", jsonBody(t, map[string]string{"mode": "manual"}), "pedro")
	var sess struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &sess)

	resp = do(t, srv, "POST", fmt.Sprintf("/v1/scan/sessions/%s/code", sess.ID),
		jsonBody(t, map[string]string{"barcode": "7790742000117"}), "pedro")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, srv, "POST", fmt.Sprintf("/v1/scan/sessions/%s/quantity", sess.ID),
		jsonBody(t, map[string]any{"op": "set", "value": 10}), "pedro")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, srv, "POST", fmt.Sprintf("/v1/scan/sessions/%s/commit", sess.ID),
		jsonBody(t, map[string]any{"type": "remove"}), "pedro")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	// Stock untouched, no audit record written.
	resp = do(t, srv, "GET", "/v1/products/barcode/7790742000117", nil, "pedro")
	var p struct {
		Quantity int `json:"quantity"`
	}
	decodeJSON(t, resp, &p)
	assert.Equal(t, 3, p.Quantity)

	resp = do(t, srv, "GET", "/v1/changes", nil, "pedro")
	var changes struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, resp, &changes)
	assert.Zero(t, changes.Total)
}

func TestE2E_UnknownBarcodeCreateOnCommit(t *testing.T) {
	srv := setupTestEnv(t)

	resp := do(t, srv, "POST", "/v1/scan/sessions", jsonBody(t, map[string]string{"mode": "manual"}), "maria")
	var sess struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &sess)

	resp = do(t, srv, "POST", fmt.Sprintf("/v1/scan/sessions/%s/code", sess.ID),
		jsonBody(t, map[string]string{"barcode": "4006381333931"}), "maria")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap struct {
		Product struct {
			Unresolved bool `json:"unresolved"`
		} `json:"product"`
	}
	decodeJSON(t, resp, &snap)
	require.True(t, snap.Product.Unresolved)

	// Without confirmation the commit is rejected.
	resp = do(t, srv, "POST", fmt.Sprintf("/v1/scan/sessions/%s/commit", sess.ID),
		jsonBody(t, map[string]any{"type": "add"}), "maria")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// With confirmation the catalog entry is created and stocked.
	resp = do(t, srv, "POST", fmt.Sprintf("/v1/scan/sessions/%s/commit", sess.ID),
		jsonBody(t, map[string]any{
			"type":           "add",
			"create_product": true,
			"name":           "Haribo Goldbären",
			"category":       "Golosinas",
		}), "maria")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var committed struct {
		Product struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
		} `json:"product"`
	}
	decodeJSON(t, resp, &committed)
	assert.Equal(t, "Haribo Goldbären", committed.Product.Name)
	assert.Equal(t, 1, committed.Product.Quantity)
}

func TestE2E_StatsAndHealth(t *testing.T) {
	srv := setupTestEnv(t)
	createTestProduct(t, srv, "Cerveza Rubia 1L", "7793147000257", 36, 10)
	createTestProduct(t, srv, "Soda 2L", "7790070410132", 4, 6)

	resp := do(t, srv, "GET", "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, srv, "GET", "/v1/stats", nil, "maria")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats struct {
		TotalProducts int `json:"total_products"`
		TotalUnits    int `json:"total_units"`
		LowStockCount int `json:"low_stock_count"`
	}
	decodeJSON(t, resp, &stats)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 40, stats.TotalUnits)
	assert.Equal(t, 1, stats.LowStockCount)
}

func TestE2E_SettingsRoundTrip(t *testing.T) {
	srv := setupTestEnv(t)

	// Defaults before anything is written.
	resp := do(t, srv, "GET", "/v1/settings", nil, "maria")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var settings struct {
		Notifications bool   `json:"notifications"`
		LowStockAlert bool   `json:"low_stock_alert"`
		OperatorName  string `json:"operator_name"`
	}
	decodeJSON(t, resp, &settings)
	assert.True(t, settings.Notifications)
	assert.True(t, settings.LowStockAlert)
	assert.Equal(t, "operator", settings.OperatorName)

	// Partial update leaves untouched fields alone.
	resp = do(t, srv, "PUT", "/v1/settings",
		jsonBody(t, map[string]any{"notifications": false, "operator_name": "María"}), "maria")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &settings)
	assert.False(t, settings.Notifications)
	assert.True(t, settings.LowStockAlert)
	assert.Equal(t, "María", settings.OperatorName)

	resp = do(t, srv, "GET", "/v1/settings", nil, "maria")
	decodeJSON(t, resp, &settings)
	assert.False(t, settings.Notifications)
	assert.Equal(t, "María", settings.OperatorName)
}

func TestE2E_SessionExpiryIsHarmless(t *testing.T) {
	srv := setupTestEnv(t)

	// A snapshot of a never-used session stays idle and pollable.
	resp := do(t, srv, "POST", "/v1/scan/sessions", jsonBody(t, map[string]string{"mode": "manual"}), "maria")
	var sess struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &sess)

	time.Sleep(100 * time.Millisecond)
	resp = do(t, srv, "GET", fmt.Sprintf("/v1/scan/sessions/%s", sess.ID), nil, "maria")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
