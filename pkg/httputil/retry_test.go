package httputil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

var fastPolicy = Policy{Attempts: 3, Delay: time.Millisecond}

func TestRetryableNil(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
}

func TestRetryableWrap(t *testing.T) {
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("wrapped error should unwrap to ErrNetwork")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("success first try", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, fastPolicy, func() error {
			calls++
			return nil
		})
		if err != nil || calls != 1 {
			t.Errorf("Retry() = %v after %d calls; want nil after 1", err, calls)
		}
	})

	t.Run("non-retryable stops", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, fastPolicy, func() error {
			calls++
			return ErrNotFound
		})
		if err != ErrNotFound || calls != 1 {
			t.Errorf("Retry() = %v after %d calls; want ErrNotFound after 1", err, calls)
		}
	})

	t.Run("retryable recovers", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, fastPolicy, func() error {
			calls++
			if calls < 2 {
				return Retryable(ErrNetwork)
			}
			return nil
		})
		if err != nil || calls != 2 {
			t.Errorf("Retry() = %v after %d calls; want nil after 2", err, calls)
		}
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, fastPolicy, func() error {
			calls++
			return Retryable(ErrNetwork)
		})
		if !errors.Is(err, ErrNetwork) || calls != 3 {
			t.Errorf("Retry() = %v after %d calls; want ErrNetwork after 3", err, calls)
		}
	})

	t.Run("zero attempts runs once", func(t *testing.T) {
		calls := 0
		_ = Retry(ctx, Policy{}, func() error {
			calls++
			return Retryable(ErrNetwork)
		})
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, Policy{Attempts: 3, Delay: time.Hour}, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantErr   error
		retryable bool
	}{
		{http.StatusOK, nil, false},
		{http.StatusNotFound, ErrNotFound, false},
		{http.StatusForbidden, ErrNetwork, false},
		{http.StatusTooManyRequests, ErrNetwork, true},
		{http.StatusBadGateway, ErrNetwork, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := CheckStatus(tt.code)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("CheckStatus(%d) = %v, want nil", tt.code, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckStatus(%d) = %v, want %v", tt.code, err, tt.wantErr)
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("CheckStatus(%d) retryable = %v, want %v", tt.code, IsRetryable(err), tt.retryable)
			}
		})
	}
}
