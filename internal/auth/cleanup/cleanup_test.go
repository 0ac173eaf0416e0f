package cleanup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glimmer-social/backend/internal/common/logger"
)

type fakeDeleter struct {
	mu      sync.Mutex
	calls   int
	failing int
	fired   chan struct{}
}

func (f *fakeDeleter) DeleteExpiredResetTokens(ctx context.Context) (int64, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	select {
	case f.fired <- struct{}{}:
	default:
	}

	if n <= f.failing {
		return 0, errors.New("store unavailable")
	}
	return 2, nil
}

func (f *fakeDeleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestCleanupSurvivesStoreFailure(t *testing.T) {
	repo := &fakeDeleter{failing: 1, fired: make(chan struct{}, 8)}
	log, _ := logger.New("", "test", "error")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go run(ctx, repo, log, time.Millisecond)

	for i := 0; i < 2; i++ {
		select {
		case <-repo.fired:
		case <-time.After(2 * time.Second):
			t.Fatalf("cleanup tick %d never fired", i+1)
		}
	}
	cancel()

	if repo.callCount() < 2 {
		t.Errorf("expected the loop to keep ticking past a failure, got %d calls", repo.callCount())
	}
}

func TestCleanupStopsOnContextCancel(t *testing.T) {
	repo := &fakeDeleter{fired: make(chan struct{}, 8)}
	log, _ := logger.New("", "test", "error")

	ctx, cancel := context.WithCancel(context.Background())
	go run(ctx, repo, log, time.Millisecond)

	select {
	case <-repo.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup never fired")
	}
	cancel()

	time.Sleep(10 * time.Millisecond)
	before := repo.callCount()
	time.Sleep(20 * time.Millisecond)
	if repo.callCount() != before {
		t.Errorf("expected no further calls after cancel, got %d then %d", before, repo.callCount())
	}
}
