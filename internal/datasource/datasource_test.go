package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/seenimoa/valuescreen/internal/infra"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"not found", &infra.ErrHTTP{StatusCode: http.StatusNotFound}, ErrTickerNotFound},
		{"rate limited", &infra.ErrHTTP{StatusCode: http.StatusTooManyRequests}, ErrRateLimited},
		{"unauthorized", &infra.ErrHTTP{StatusCode: http.StatusUnauthorized}, ErrMissingAPIKey},
		{"forbidden", &infra.ErrHTTP{StatusCode: http.StatusForbidden}, ErrMissingAPIKey},
		{"canceled", fmt.Errorf("get: %w", context.Canceled), context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("test", "KO", tt.err)
			if !errors.Is(got, tt.target) {
				t.Errorf("classify() = %v, want errors.Is %v", got, tt.target)
			}
		})
	}

	var netErr *ErrNetwork
	if err := classify("test", "KO", &infra.ErrHTTP{StatusCode: 502}); !errors.As(err, &netErr) {
		t.Errorf("502 should classify as *ErrNetwork, got %T", err)
	}
	var malformed *ErrMalformed
	if err := classify("test", "KO", &infra.DecodeError{Err: errors.New("bad")}); !errors.As(err, &malformed) {
		t.Errorf("decode error should classify as *ErrMalformed, got %T", err)
	}
	if classify("test", "KO", nil) != nil {
		t.Error("classify(nil) should be nil")
	}
}

func TestNewProvider(t *testing.T) {
	for _, name := range []string{"yahoo", "YFinance", " fmp "} {
		if _, err := NewProvider(name, "key"); err != nil {
			t.Errorf("NewProvider(%q) unexpected error: %v", name, err)
		}
	}
	if _, err := NewProvider("bloomberg", ""); err == nil {
		t.Error("expected error for unknown provider")
	}
}
