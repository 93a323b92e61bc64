package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/silasdani/bullet-services-sub001/internal/freshbooks"
)

func newTestRunner() *Runner {
	r := NewRunner(slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.BaseDelay = 5 * time.Millisecond
	return r
}

func TestRunnerRetriesTransientFailure(t *testing.T) {
	r := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	var runs int32
	done := make(chan struct{})
	r.Enqueue(Job{
		Name: "flaky",
		Run: func(ctx context.Context) error {
			if atomic.AddInt32(&runs, 1) < 3 {
				return &freshbooks.APIError{StatusCode: 503}
			}
			close(done)
			return nil
		},
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("job never succeeded; runs = %d", atomic.LoadInt32(&runs))
	}
	if got := atomic.LoadInt32(&runs); got != 3 {
		t.Errorf("runs = %d; want 3", got)
	}
}

func TestRunnerDiscardsPermanentFailure(t *testing.T) {
	r := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	var runs int32
	r.Enqueue(Job{
		Name: "broken",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return errors.New("record vanished")
		},
	})

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("runs = %d; want 1 (no retry on permanent failure)", got)
	}
}

func TestRunnerGivesUpAfterMaxAttempts(t *testing.T) {
	r := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	var runs int32
	r.Enqueue(Job{
		Name: "always-down",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return &freshbooks.APIError{StatusCode: 429}
		},
	})

	time.Sleep(300 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != 3 {
		t.Errorf("runs = %d; want 3 (max attempts)", got)
	}
}

func TestRetryableClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", &freshbooks.APIError{StatusCode: 429}, true},
		{"server error", &freshbooks.APIError{StatusCode: 500}, true},
		{"not found", &freshbooks.APIError{StatusCode: 404}, false},
		{"validation", &freshbooks.APIError{StatusCode: 422}, false},
		{"timeout", context.DeadlineExceeded, true},
		{"generic", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Errorf("%s: Retryable = %v; want %v", tc.name, got, tc.want)
		}
	}
}
