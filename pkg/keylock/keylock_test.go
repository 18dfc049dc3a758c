package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesPerKey(t *testing.T) {
	locks := New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock("order-1")
			defer locks.Unlock("order-1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	locks := New()

	locks.Lock("order-1")
	defer locks.Unlock("order-1")

	done := make(chan struct{})
	go func() {
		locks.Lock("order-2")
		locks.Unlock("order-2")
		close(done)
	}()

	<-done
}
