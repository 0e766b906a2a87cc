package monitor

import (
	"context"
	"testing"
	"time"

	"shelfwatch/lib/product"

	"github.com/stretchr/testify/require"
)

func TestRunnerRunOnce(t *testing.T) {
	ctx := context.Background()
	fetcher := fetcherFunc(func(ctx context.Context, id string) (*product.Product, error) {
		return snapshot(id, price(980), product.InStock), nil
	})
	service := NewService(ctx, fetcher, &memoryStore{}, Options{})
	service.AddItem("B000RUN001")

	rounds := 0
	runner := Runner{
		Service: service,
		OnRound: func(ctx context.Context, results map[string]*product.Product) {
			rounds++
			require.Len(t, results, 1)
		},
	}

	results := runner.RunOnce(ctx)
	require.Equal(t, 1, rounds)
	require.NotNil(t, results["B000RUN001"])
}

func TestRunnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := fetcherFunc(func(ctx context.Context, id string) (*product.Product, error) {
		return snapshot(id, price(980), product.InStock), nil
	})
	service := NewService(ctx, fetcher, &memoryStore{}, Options{})
	service.AddItem("B000RUN002")

	rounds := make(chan struct{}, 16)
	runner := Runner{
		Service:  service,
		Interval: 5 * time.Millisecond,
		OnRound: func(ctx context.Context, results map[string]*product.Product) {
			select {
			case rounds <- struct{}{}:
			default:
			}
		},
	}

	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	// wait for two full rounds before cancelling
	for i := 0; i < 2; i++ {
		select {
		case <-rounds:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a round")
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
}

func TestRunnerSurvivesPanickingRound(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := fetcherFunc(func(ctx context.Context, id string) (*product.Product, error) {
		return snapshot(id, price(980), product.InStock), nil
	})
	service := NewService(ctx, fetcher, &memoryStore{}, Options{})
	service.AddItem("B000RUN003")

	rounds := make(chan int, 16)
	count := 0
	runner := Runner{
		Service:      service,
		Interval:     5 * time.Millisecond,
		ErrorBackoff: 5 * time.Millisecond,
		OnRound: func(ctx context.Context, results map[string]*product.Product) {
			count++
			select {
			case rounds <- count:
			default:
			}
			if count == 1 {
				panic("hook exploded")
			}
		},
	}

	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	// the first round panics; a second round proves the loop recovered
	for i := 0; i < 2; i++ {
		select {
		case <-rounds:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a round")
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
}
