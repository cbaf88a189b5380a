package vulkan

import (
	"sync"

	vk "github.com/goki/vulkan"
)

// QueueLocks serializes host access to queues. Vulkan requires external
// synchronization of vkQueueSubmit and vkQueuePresentKHR per VkQueue, and the
// compute and graphics queues share a handle on devices that expose a single
// queue in the graphics family.
type QueueLocks struct {
	mu    sync.Mutex // Protects access to the locks map
	locks map[vk.Queue]*sync.Mutex
}

func NewQueueLocks() *QueueLocks {
	return &QueueLocks{
		locks: make(map[vk.Queue]*sync.Mutex),
	}
}

// Get or create the mutex of a queue
func (ql *QueueLocks) lockFor(queue vk.Queue) *sync.Mutex {
	ql.mu.Lock()
	defer ql.mu.Unlock()

	l, exists := ql.locks[queue]
	if !exists {
		l = &sync.Mutex{}
		ql.locks[queue] = l
	}
	return l
}

// SafeQueueCall runs fn while holding the lock of the queue.
func (ql *QueueLocks) SafeQueueCall(queue vk.Queue, fn func() error) error {
	l := ql.lockFor(queue)
	l.Lock()
	defer l.Unlock()

	return fn()
}
