package containers

// SlotRing rotates over a fixed number of slots. Current is the slot in use and
// Next is the one that becomes current after Advance.
type SlotRing struct {
	size    int
	current int
}

// Create a new SlotRing over size slots starting at slot 0. Size must be positive.
func NewSlotRing(size int) *SlotRing {
	if size <= 0 {
		panic("containers: slot ring size must be positive")
	}
	return &SlotRing{size: size}
}

// Advance moves current to the next slot and returns it.
func (r *SlotRing) Advance() int {
	r.current = r.Next()
	return r.current
}

// Current returns the slot in use.
func (r *SlotRing) Current() int {
	return r.current
}

// Next returns the slot that Advance would make current.
func (r *SlotRing) Next() int {
	return (r.current + 1) % r.size
}

// Size returns the number of slots.
func (r *SlotRing) Size() int {
	return r.size
}
