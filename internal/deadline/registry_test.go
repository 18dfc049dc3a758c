package deadline

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expiryRecorder struct {
	mu    sync.Mutex
	fired []string
}

func (r *expiryRecorder) record(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fired = append(r.fired, orderID)
}

func (r *expiryRecorder) count(orderID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, id := range r.fired {
		if id == orderID {
			n++
		}
	}
	return n
}

func TestArmFiresAtDeadline(t *testing.T) {
	clock := clockwork.NewFakeClock()
	recorder := &expiryRecorder{}
	registry := CreateRegistry(clock, recorder.record)

	registry.Arm("o-1", clock.Now().Add(10*time.Minute))
	require.True(t, registry.Armed("o-1"))

	clock.Advance(9 * time.Minute)
	assert.Equal(t, 0, recorder.count("o-1"))

	clock.Advance(2 * time.Minute)
	require.Eventually(t, func() bool {
		return recorder.count("o-1") == 1
	}, time.Second, 5*time.Millisecond)

	assert.False(t, registry.Armed("o-1"))
}

func TestCancelPreventsFiring(t *testing.T) {
	clock := clockwork.NewFakeClock()
	recorder := &expiryRecorder{}
	registry := CreateRegistry(clock, recorder.record)

	registry.Arm("o-1", clock.Now().Add(10*time.Minute))
	registry.Cancel("o-1")
	assert.False(t, registry.Armed("o-1"))

	clock.Advance(time.Hour)
	assert.Equal(t, 0, recorder.count("o-1"))
}

func TestRearmReplacesTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	recorder := &expiryRecorder{}
	registry := CreateRegistry(clock, recorder.record)

	registry.Arm("o-1", clock.Now().Add(10*time.Minute))
	registry.Arm("o-1", clock.Now().Add(24*time.Hour))

	// The first deadline was superseded and must not fire.
	clock.Advance(11 * time.Minute)
	assert.Equal(t, 0, recorder.count("o-1"))
	assert.True(t, registry.Armed("o-1"))

	clock.Advance(24 * time.Hour)
	require.Eventually(t, func() bool {
		return recorder.count("o-1") == 1
	}, time.Second, 5*time.Millisecond)
}

func TestPastDeadlineFiresImmediately(t *testing.T) {
	clock := clockwork.NewFakeClock()
	recorder := &expiryRecorder{}
	registry := CreateRegistry(clock, recorder.record)

	registry.Arm("o-1", clock.Now().Add(-time.Minute))

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool {
		return recorder.count("o-1") == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTimersAreIndependentPerOrder(t *testing.T) {
	clock := clockwork.NewFakeClock()
	recorder := &expiryRecorder{}
	registry := CreateRegistry(clock, recorder.record)

	registry.Arm("o-1", clock.Now().Add(10*time.Minute))
	registry.Arm("o-2", clock.Now().Add(24*time.Hour))

	registry.Cancel("o-1")

	clock.Advance(25 * time.Hour)
	require.Eventually(t, func() bool {
		return recorder.count("o-2") == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, recorder.count("o-1"))
}
