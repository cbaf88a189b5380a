package core

import "sync"

// System event codes.
type SystemEventCode int

const (
	// Shuts the application down on the next tick.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed.
	/* Context usage:
	 * key := data.U16[0]
	 */
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Keyboard key released.
	/* Context usage:
	 * key := data.U16[0]
	 */
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03

	// Mouse wheel scrolled.
	/* Context usage:
	 * yoffset := data.F64[1]
	 */
	EVENT_CODE_MOUSE_WHEEL SystemEventCode = 0x04

	// Framebuffer resized.
	/* Context usage:
	 * width := data.U32[0]
	 * height := data.U32[1]
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x05

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type EventContext struct {
	U16 [8]uint16
	U32 [4]uint32
	F64 [2]float64
}

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventSystem dispatches events synchronously on the firing goroutine.
type EventSystem struct {
	mu         sync.RWMutex
	registered [MAX_EVENT_CODE + 1][]registeredEvent
}

func NewEventSystem() *EventSystem {
	return &EventSystem{}
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listeners will not be registered again and will cause this to return false.
 */
func (es *EventSystem) Register(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if code < 0 || code > MAX_EVENT_CODE || onEvent == nil {
		return false
	}
	es.mu.Lock()
	defer es.mu.Unlock()

	for _, e := range es.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	es.registered[code] = append(es.registered[code], registeredEvent{listener: listener, callback: onEvent})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code. If no matching
 * registration is found, this function returns false.
 */
func (es *EventSystem) Unregister(code SystemEventCode, listener interface{}) bool {
	if code < 0 || code > MAX_EVENT_CODE {
		return false
	}
	es.mu.Lock()
	defer es.mu.Unlock()

	events := es.registered[code]
	for i, e := range events {
		if e.listener == listener {
			es.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 */
func (es *EventSystem) Fire(code SystemEventCode, sender interface{}, context EventContext) bool {
	if code < 0 || code > MAX_EVENT_CODE {
		return false
	}
	es.mu.RLock()
	events := append([]registeredEvent(nil), es.registered[code]...)
	es.mu.RUnlock()

	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			return true
		}
	}
	return false
}

// Shutdown drops every registration.
func (es *EventSystem) Shutdown() {
	es.mu.Lock()
	defer es.mu.Unlock()
	for i := range es.registered {
		es.registered[i] = nil
	}
}
