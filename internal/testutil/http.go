package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/showmate/internal/app/system/auth"
)

// Shared secret for handler tests that go through RequireBearer.
const (
	TestJWTSecret = "test-secret-for-showmate-handlers"
	TestJWTIssuer = "showmate-test"
)

// TestVerifier returns the verifier matching BearerFor.
func TestVerifier(t *testing.T) *auth.JWTVerifier {
	t.Helper()
	v, err := auth.NewJWTVerifier(TestJWTSecret, TestJWTIssuer)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	return v
}

// BearerFor returns an Authorization header value for uid.
func BearerFor(t *testing.T, uid string) string {
	t.Helper()
	tok, err := TestVerifier(t).IssueToken(uid, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + tok
}

// NewJSONRequest creates a request with body encoded as JSON.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// WithUID returns r with uid as the verified principal, for handlers called
// without the RequireBearer middleware in front of them.
func WithUID(r *http.Request, uid string) *http.Request {
	return r.WithContext(auth.WithUID(r.Context(), uid))
}

// NewAuthenticatedRequest creates a JSON request whose context already
// carries uid as the verified principal.
func NewAuthenticatedRequest(t *testing.T, method, target, uid string, body any) *http.Request {
	t.Helper()
	return WithUID(NewJSONRequest(t, method, target, body), uid)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body %q does not contain %q", r.Body.String(), expected)
	}
}

// DecodeJSON decodes the response body into dst.
func (r *ResponseRecorder) DecodeJSON(t *testing.T, dst any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", r.Body.String(), err)
	}
}
