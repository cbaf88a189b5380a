package core

import "testing"

func TestEventSystemFireStopsWhenHandled(t *testing.T) {
	es := NewEventSystem()
	var calls []string
	first, second := "first", "second"

	es.Register(EVENT_CODE_RESIZED, first, func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, listener.(string))
		return data.U32[0] == 0
	})
	es.Register(EVENT_CODE_RESIZED, second, func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, listener.(string))
		return true
	})

	ctx := EventContext{}
	ctx.U32[0] = 800
	if !es.Fire(EVENT_CODE_RESIZED, nil, ctx) {
		t.Fatal("expected event to be handled")
	}
	if len(calls) != 2 {
		t.Fatalf("expected both listeners, got %v", calls)
	}

	calls = nil
	es.Fire(EVENT_CODE_RESIZED, nil, EventContext{})
	if len(calls) != 1 || calls[0] != first {
		t.Fatalf("handled event must not reach later listeners, got %v", calls)
	}
}

func TestEventSystemRegisterDuplicateAndUnregister(t *testing.T) {
	es := NewEventSystem()
	fn := func(SystemEventCode, interface{}, interface{}, EventContext) bool { return true }
	if !es.Register(EVENT_CODE_APPLICATION_QUIT, es, fn) {
		t.Fatal("first registration failed")
	}
	if es.Register(EVENT_CODE_APPLICATION_QUIT, es, fn) {
		t.Fatal("duplicate listener registered")
	}
	if !es.Unregister(EVENT_CODE_APPLICATION_QUIT, es) {
		t.Fatal("unregister failed")
	}
	if es.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}) {
		t.Fatal("no listener should remain")
	}
	if es.Register(MAX_EVENT_CODE+1, es, fn) {
		t.Fatal("out of range code accepted")
	}
}
