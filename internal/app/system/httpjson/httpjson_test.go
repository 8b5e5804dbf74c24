package httpjson

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/showmate/internal/app/system/apperr"
	"go.uber.org/zap"
)

func TestFail_ClassifiedError(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, zap.NewNop(), "invite", apperr.Conflict.New("User already invited"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "User already invited" {
		t.Errorf("error: got %q", body.Error)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
}

func TestDecode_Malformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	var dst map[string]any
	err := Decode(req, &dst)
	if apperr.Status(err) != http.StatusBadRequest {
		t.Errorf("expected bad request, got %v", err)
	}
}

func TestDecode_OversizedBody(t *testing.T) {
	payload := `{"note":"` + strings.Repeat("x", 128) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, 32)

	var dst map[string]any
	err := Decode(req, &dst)
	if apperr.Status(err) != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %v", err)
	}
	if got := apperr.Message(err); got != "Request body too large" {
		t.Errorf("message: got %q", got)
	}
}
