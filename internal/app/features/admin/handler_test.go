package admin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/orgmanager/internal/app/adminauth"
	"github.com/dalemusser/orgmanager/internal/app/features/admin"
	"github.com/dalemusser/orgmanager/internal/app/system/authutil"
	"github.com/dalemusser/orgmanager/internal/app/system/ratelimit"
	"github.com/dalemusser/orgmanager/internal/domain/models"
	"github.com/dalemusser/orgmanager/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	_ = authutil.SetCost(bcrypt.MinCost)
}

type accounts map[string]models.Organization

func (a accounts) GetByEmail(_ context.Context, email string) (models.Organization, error) {
	if o, ok := a[email]; ok {
		return o, nil
	}
	return models.Organization{}, mongo.ErrNoDocuments
}

type recorder struct{ logins []string }

func (r *recorder) CreateFrom(_ context.Context, _ *http.Request, adminID, _ string) error {
	r.logins = append(r.logins, adminID)
	return nil
}

type fixture struct {
	router http.Handler
	org    models.Organization
	rec    *recorder
	logs   *observer.ObservedLogs
}

func newFixture(t *testing.T, cfg ratelimit.LoginConfig) *fixture {
	t.Helper()
	hash, err := authutil.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	org := models.Organization{
		ID:                    primitive.NewObjectID(),
		OrganizationName:      "Acme",
		DynamicCollectionName: "orgAcme",
		Email:                 "admin@acme.test",
		PasswordHash:          hash,
	}
	svc := adminauth.New(accounts{org.Email: org}, testutil.TestTokens(t), zap.NewNop())
	limiter := ratelimit.NewLoginLimiter(cfg)
	t.Cleanup(limiter.Stop)

	rec := &recorder{}
	core, logs := observer.New(zapcore.InfoLevel)
	h := admin.NewHandler(svc, limiter, rec, zap.New(core))
	return &fixture{router: admin.Routes(h), org: org, rec: rec, logs: logs}
}

func (f *fixture) login(t *testing.T, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.JSONRequest(t, "POST", "/login", map[string]string{"email": email, "password": password})
	req.RemoteAddr = "198.51.100.4:5555"
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t, ratelimit.DefaultLoginConfig())

	rr := f.login(t, "Admin@Acme.test ", "s3cret")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := testutil.DecodeJSON(t, rr)
	if body["message"] != "Login successful" {
		t.Errorf("message: got %v", body["message"])
	}
	if body["adminId"] != f.org.ID.Hex() {
		t.Errorf("adminId: got %v, want %s", body["adminId"], f.org.ID.Hex())
	}
	if body["organizationName"] != "Acme" {
		t.Errorf("organizationName: got %v", body["organizationName"])
	}
	if tok, _ := body["token"].(string); tok == "" {
		t.Error("expected a token")
	}
	if len(f.rec.logins) != 1 || f.rec.logins[0] != f.org.ID.Hex() {
		t.Errorf("recorded logins: got %v", f.rec.logins)
	}
}

func TestLogin_FailuresLookTheSame(t *testing.T) {
	f := newFixture(t, ratelimit.DefaultLoginConfig())

	wrong := f.login(t, "admin@acme.test", "nope")
	unknown := f.login(t, "nobody@acme.test", "s3cret")

	for _, rr := range []*httptest.ResponseRecorder{wrong, unknown} {
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rr.Code)
		}
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Errorf("bodies differ: %q vs %q", wrong.Body.String(), unknown.Body.String())
	}
	if len(f.rec.logins) != 0 {
		t.Error("failed logins must not be recorded")
	}
}

func TestLogin_Validation(t *testing.T) {
	f := newFixture(t, ratelimit.DefaultLoginConfig())

	if rr := f.login(t, "", "s3cret"); rr.Code != http.StatusBadRequest {
		t.Errorf("missing email: expected 400, got %d", rr.Code)
	}
	if rr := f.login(t, "admin@acme.test", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("missing password: expected 400, got %d", rr.Code)
	}

	req := httptest.NewRequest("POST", "/login", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty body: expected 400, got %d", rr.Code)
	}
}

func TestLogin_ThrottledPerEmail(t *testing.T) {
	f := newFixture(t, ratelimit.LoginConfig{IPLimit: 100, IPWindow: time.Minute, EmailLimit: 2, EmailWindow: time.Minute})

	for i := 0; i < 2; i++ {
		if rr := f.login(t, "admin@acme.test", "nope"); rr.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i, rr.Code)
		}
	}

	rr := f.login(t, "admin@acme.test", "s3cret")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestLogin_SuccessResetsEmailWindow(t *testing.T) {
	f := newFixture(t, ratelimit.LoginConfig{IPLimit: 100, IPWindow: time.Minute, EmailLimit: 2, EmailWindow: time.Minute})

	if rr := f.login(t, "admin@acme.test", "nope"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr := f.login(t, "admin@acme.test", "s3cret"); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	for i := 0; i < 2; i++ {
		if rr := f.login(t, "admin@acme.test", "s3cret"); rr.Code != http.StatusOK {
			t.Fatalf("attempt %d after reset: expected 200, got %d", i, rr.Code)
		}
	}
}

func TestLogin_ThrottleLogged(t *testing.T) {
	f := newFixture(t, ratelimit.LoginConfig{IPLimit: 100, IPWindow: time.Minute, EmailLimit: 1, EmailWindow: time.Minute})

	f.login(t, "admin@acme.test", "nope")
	f.login(t, "admin@acme.test", "nope")

	throttled := f.logs.FilterMessage("admin login throttled").All()
	if len(throttled) != 1 {
		t.Fatalf("expected 1 throttle entry, got %d", len(throttled))
	}
	if throttled[0].Level != zapcore.WarnLevel {
		t.Errorf("level: got %v", throttled[0].Level)
	}
	for _, e := range f.logs.All() {
		if _, ok := e.ContextMap()["email"]; ok {
			t.Errorf("%q logged the email address", e.Message)
		}
	}
}
