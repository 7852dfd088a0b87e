package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

type countingAdmitter struct {
	admitted int
}

func (a *countingAdmitter) Admit(ctx context.Context) error {
	a.admitted++
	return nil
}

func fastConfig(maxRetries int) Config {
	return Config{MaxRetries: maxRetries, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
}

func TestExecuteSuccessFirstAttempt(t *testing.T) {
	admitter := &countingAdmitter{}
	ex := New(fastConfig(3), admitter)

	calls := 0
	err := ex.Execute(context.Background(), "search", func(ctx context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if calls != 1 || admitter.admitted != 1 {
		t.Errorf("Expected 1 call and 1 admission, got %d and %d", calls, admitter.admitted)
	}
}

func TestExecuteFatalStatusNotRetried(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound} {
		t.Run(fmt.Sprint(code), func(t *testing.T) {
			ex := New(fastConfig(3), nil)

			calls := 0
			err := ex.Execute(context.Background(), "search", func(ctx context.Context) error {
				calls++
				return &StatusError{Code: code}
			})

			if calls != 1 {
				t.Errorf("Expected exactly one attempt, got %d", calls)
			}
			var statusErr *StatusError
			if !errors.As(err, &statusErr) || statusErr.Code != code {
				t.Errorf("Expected underlying status error, got %v", err)
			}
			if errors.Is(err, ErrExhausted) {
				t.Error("Fatal errors must not be reported as exhausted retries")
			}
		})
	}
}

func TestExecuteExhaustsRetries(t *testing.T) {
	admitter := &countingAdmitter{}
	ex := New(fastConfig(3), admitter)

	var retries []int
	ex.OnRetry = func(attempt int, delay time.Duration, err error) { retries = append(retries, attempt) }

	calls := 0
	err := ex.Execute(context.Background(), "youtube search: color grading", func(ctx context.Context) error {
		calls++
		return &StatusError{Code: http.StatusInternalServerError}
	})

	if calls != 4 {
		t.Errorf("Expected 4 attempts, got %d", calls)
	}
	if admitter.admitted != 4 {
		t.Errorf("Expected every attempt to be admitted, got %d admissions", admitter.admitted)
	}
	if len(retries) != 3 {
		t.Errorf("Expected 3 retry notifications, got %d", len(retries))
	}

	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Expected ErrExhausted, got %v", err)
	}
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Expected *ExhaustedError, got %T", err)
	}
	if exhausted.Attempts != 4 {
		t.Errorf("Expected 4 attempts recorded, got %d", exhausted.Attempts)
	}
	if !strings.Contains(err.Error(), "youtube search: color grading") {
		t.Errorf("Expected error to name the operation, got '%s'", err.Error())
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusInternalServerError {
		t.Errorf("Expected last error to be wrapped, got %v", err)
	}
}

func TestExecuteRecoversAfterTransientFailure(t *testing.T) {
	ex := New(fastConfig(3), nil)

	calls := 0
	err := ex.Execute(context.Background(), "search", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
}

func TestDelay(t *testing.T) {
	ex := New(Config{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: 10 * time.Second}, nil)

	expected := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second}
	for attempt, want := range expected {
		if got := ex.Delay(attempt); got != want {
			t.Errorf("Attempt %d: expected delay %v, got %v", attempt, want, got)
		}
	}
}

func TestExecuteStopsOnCancel(t *testing.T) {
	ex := New(Config{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Second}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := ex.Execute(ctx, "search", func(ctx context.Context) error {
		return errors.New("temporary")
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Expected cancellation to interrupt the backoff")
	}
}

func TestExecuteRetriesAttemptTimeout(t *testing.T) {
	ex := New(fastConfig(3), nil)

	calls := 0
	err := ex.Execute(context.Background(), "search", func(ctx context.Context) error {
		calls++
		if calls == 1 {
			attemptCtx, cancel := context.WithTimeout(ctx, time.Nanosecond)
			defer cancel()
			<-attemptCtx.Done()
			return attemptCtx.Err()
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected a timed out attempt to be retried, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 attempts, got %d", calls)
	}
}

func TestExecuteReturnsContextErrorOnceParentDone(t *testing.T) {
	ex := New(fastConfig(3), nil)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := ex.Execute(ctx, "search", func(ctx context.Context) error {
		calls++
		cancel()
		return ctx.Err()
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected no retry after the parent context ended, got %d attempts", calls)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err      error
		expected Class
	}{
		{&StatusError{Code: 404}, Fatal},
		{fmt.Errorf("wrapped: %w", &StatusError{Code: 403}), Fatal},
		{&StatusError{Code: 429}, Transient},
		{&StatusError{Code: 503}, Transient},
		{errors.New("network down"), Transient},
		{context.DeadlineExceeded, Transient},
	}

	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.expected {
			t.Errorf("Classify(%v): expected %s, got %s", tt.err, tt.expected, got)
		}
	}
}
