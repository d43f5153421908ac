package orchestrator

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	var active int32
	var maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.With("account.move:1", func() {
				n := atomic.AddInt32(&active, 1)
				for {
					cur := atomic.LoadInt32(&maxActive)
					if n <= cur || atomic.CompareAndSwapInt32(&maxActive, cur, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxActive)
}

func TestKeyedMutexAllowsDifferentKeysConcurrently(t *testing.T) {
	km := NewKeyedMutex()
	var wg sync.WaitGroup
	started := make(chan struct{}, 2)
	release := make(chan struct{})

	for _, key := range []string{"account.move:1", "account.move:2"} {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			km.With(k, func() {
				started <- struct{}{}
				<-release
			})
		}(key)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("expected both distinct-key goroutines to enter concurrently")
		}
	}
	close(release)
	wg.Wait()
}
