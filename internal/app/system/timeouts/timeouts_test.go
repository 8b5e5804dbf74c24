package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	defer Reset()

	Configure(Config{Short: 7 * time.Second})

	if Short() != 7*time.Second {
		t.Errorf("Short: got %v", Short())
	}
	if Medium() != DefaultMedium {
		t.Errorf("Medium changed: got %v", Medium())
	}
	if Long() != DefaultLong {
		t.Errorf("Long changed: got %v", Long())
	}
}

func TestReset(t *testing.T) {
	Configure(Config{Ping: time.Millisecond, Long: time.Minute})
	Reset()

	if got := Current(); got != (Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}) {
		t.Errorf("Current after Reset: %+v", got)
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context did not expire")
	}
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("Err: got %v", ctx.Err())
	}
}
