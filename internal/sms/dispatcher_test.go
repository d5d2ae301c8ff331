package sms

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSender records deliveries and can fail the first N attempts per
// recipient.
type fakeSender struct {
	mu        sync.Mutex
	delivered []string
	failFirst map[string]int
}

func newFakeSender() *fakeSender {
	return &fakeSender{failFirst: make(map[string]int)}
}

func (s *fakeSender) Send(_ context.Context, to, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFirst[to] > 0 {
		s.failFirst[to]--
		return errors.New("gateway timeout")
	}
	s.delivered = append(s.delivered, to)
	return nil
}

func (s *fakeSender) deliveries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.delivered))
	copy(out, s.delivered)
	return out
}

func TestDispatcherDeliversAndDrains(t *testing.T) {
	sender := newFakeSender()
	d := NewDispatcher(sender, 16, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)

	d.Enqueue("+254700000001", "hello")
	d.Enqueue("+254700000002", "habari")

	// Cancellation drains whatever is still queued before Run returns.
	time.Sleep(50 * time.Millisecond)
	cancel()
	d.Wait()

	assert.ElementsMatch(t, []string{"+254700000001", "+254700000002"}, sender.deliveries())
}

func TestDispatcherEnqueueNeverBlocks(t *testing.T) {
	// No Run loop consuming: the queue fills and further enqueues must drop
	// instead of blocking the caller.
	d := NewDispatcher(newFakeSender(), 2, zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			d.Enqueue("+254700000001", "ping")
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
	assert.Len(t, d.queue, 2)
}

func TestDispatcherRetriesOnce(t *testing.T) {
	sender := newFakeSender()
	sender.failFirst["+254700000009"] = 1
	d := NewDispatcher(sender, 4, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)

	d.Enqueue("+254700000009", "retry me")

	time.Sleep(50 * time.Millisecond)
	cancel()
	d.Wait()

	require.Equal(t, []string{"+254700000009"}, sender.deliveries())
}

func TestDispatcherGivesUpAfterRetry(t *testing.T) {
	sender := newFakeSender()
	sender.failFirst["+254700000009"] = 2
	d := NewDispatcher(sender, 4, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)

	d.Enqueue("+254700000009", "doomed")

	time.Sleep(50 * time.Millisecond)
	cancel()
	d.Wait()

	assert.Empty(t, sender.deliveries())
}
