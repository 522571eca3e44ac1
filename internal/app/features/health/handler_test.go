package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/orgmanager/internal/app/features/health"
	"github.com/dalemusser/orgmanager/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type downDB struct{}

func (downDB) Ping(context.Context, *readpref.ReadPref) error {
	return errors.New("server selection timeout")
}

func TestServeRoot(t *testing.T) {
	handler := health.NewHandler(downDB{}, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.ServeRoot(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := testutil.DecodeJSON(t, rec)["status"]; got != "working" {
		t.Errorf("status: got %v, want %q", got, "working")
	}
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}

	var response struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("status: got %q, want %q", response.Status, "ok")
	}
	if response.Database != "connected" {
		t.Errorf("database: got %q, want %q", response.Database, "connected")
	}
}

func TestServe_DatabaseDown(t *testing.T) {
	handler := health.NewHandler(downDB{}, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	body := testutil.DecodeJSON(t, rec)
	if body["database"] != "disconnected" {
		t.Errorf("database: got %v", body["database"])
	}
	if _, leaked := body["error"]; leaked {
		t.Error("driver error must not be exposed")
	}
}

func TestRoutes_Head(t *testing.T) {
	r := health.Routes(health.NewHandler(downDB{}, zap.NewNop()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("HEAD", "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}
