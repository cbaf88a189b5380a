package vulkan

import (
	"errors"
	"sync"
	"testing"

	vk "github.com/goki/vulkan"
)

func TestSafeQueueCallSerializes(t *testing.T) {
	locks := NewQueueLocks()
	var queue vk.Queue

	active := 0
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = locks.SafeQueueCall(queue, func() error {
				active++
				if active != 1 {
					t.Errorf("%d callers inside the queue lock", active)
				}
				active--
				return nil
			})
		}()
	}
	wg.Wait()
}

func TestSafeQueueCallReturnsError(t *testing.T) {
	locks := NewQueueLocks()
	want := errors.New("submit")
	if err := locks.SafeQueueCall(nil, func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}
