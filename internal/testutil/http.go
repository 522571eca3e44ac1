package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/orgmanager/internal/app/system/tokens"
)

// TestSecret signs tokens issued by TestTokens.
const TestSecret = "orgmanager-test-secret"

// TestTokens returns a token service with a fixed secret and a one hour TTL.
func TestTokens(t *testing.T) *tokens.Service {
	t.Helper()
	svc, err := tokens.New(tokens.Config{Secret: []byte(TestSecret), Algorithm: "HS256", TTL: time.Hour})
	if err != nil {
		t.Fatalf("tokens.New: %v", err)
	}
	return svc
}

// BearerFor issues a token for organization and returns it as an
// Authorization header value.
func BearerFor(t *testing.T, svc *tokens.Service, adminID, organization string) string {
	t.Helper()
	raw, err := svc.Issue(adminID, organization)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return "Bearer " + raw
}

// JSONRequest builds a request whose body is body encoded as JSON. A nil
// body sends no body.
func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON parses a recorded JSON response body.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON (%d): %q", rec.Code, rec.Body.String())
	}
	return body
}
