package instance_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"solshift/internal/instance"
)

func TestAcquireExcludesSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solshift.lock")

	first, err := instance.Acquire(path)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	t.Cleanup(func() { _ = first.Release() })

	if _, err := instance.Acquire(path); !errors.Is(err, instance.ErrAlreadyRunning) {
		t.Fatalf("second Acquire error = %v, want ErrAlreadyRunning", err)
	}
}

func TestAcquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solshift.lock")

	guard, err := instance.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := guard.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("lock file still present after release: %v", err)
	}

	second, err := instance.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	_ = second.Release()
}

func TestReleaseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solshift.lock")

	guard, err := instance.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := guard.Release(); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := guard.Release(); err != nil {
		t.Fatalf("repeat Release: %v", err)
	}
}

func TestConcurrentAcquireSingleWinner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solshift.lock")

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	guards := make(chan *instance.Guard, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard, err := instance.Acquire(path)
			results <- err
			if guard != nil {
				guards <- guard
			}
		}()
	}
	wg.Wait()
	close(results)
	close(guards)

	winners, losers := 0, 0
	for err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, instance.ErrAlreadyRunning):
			losers++
		default:
			t.Fatalf("unexpected Acquire error: %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1 (losers: %d)", winners, losers)
	}
	for guard := range guards {
		_ = guard.Release()
	}
}
