package projects

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/showmate/internal/app/system/limits"
)

func TestAuditPageSize(t *testing.T) {
	tests := []struct {
		query string
		want  int64
	}{
		{"", limits.DefaultAuditPage},
		{"?limit=abc", limits.DefaultAuditPage},
		{"?limit=-3", limits.DefaultAuditPage},
		{"?limit=10", 10},
		{"?limit=100000", limits.MaxAuditPage},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/project/audit"+tt.query, nil)
		if got := auditPageSize(r); got != tt.want {
			t.Errorf("auditPageSize(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}
