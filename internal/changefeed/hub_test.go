package changefeed

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_NotifyReachesSubscribers(t *testing.T) {
	hub := NewHub()
	var a, b atomic.Int32

	subA := hub.Subscribe(func() { a.Add(1) })
	subB := hub.Subscribe(func() { b.Add(1) })
	require.Equal(t, 2, hub.Len())

	hub.Notify()
	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(1), b.Load())

	subA.Close()
	hub.Notify()
	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(2), b.Load())

	subB.Close()
	assert.Zero(t, hub.Len())
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(func() {})
	other := hub.Subscribe(func() {})

	sub.Close()
	sub.Close()
	assert.Equal(t, 1, hub.Len())

	other.Close()
	assert.Zero(t, hub.Len())
}

func TestHub_SubscribeDuringNotify(t *testing.T) {
	hub := NewHub()
	var late atomic.Int32

	// Подписка из колбэка не должна блокировать Notify.
	hub.Subscribe(func() {
		hub.Subscribe(func() { late.Add(1) })
	})
	hub.Notify()
	hub.Notify()

	assert.GreaterOrEqual(t, late.Load(), int32(1))
}

func TestHub_Concurrent(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	var hits atomic.Int64

	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := hub.Subscribe(func() { hits.Add(1) })
			hub.Notify()
			sub.Close()
		}()
	}
	wg.Wait()

	assert.Zero(t, hub.Len())
	assert.GreaterOrEqual(t, hits.Load(), int64(20))
}

func TestNoop_Publish(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), Change{Source: SourceOffers, Op: OpDelete, ID: "1"}))
}
