package realtime

import (
	"testing"
)

func testEvent(eventType string) Event {
	return Event{ID: "e1", Type: eventType}
}

func TestDispatchTable_RegistrationOrder(t *testing.T) {
	d := NewDispatchTable(nil)

	var order []string
	d.Add("order.updated", func(Event) { order = append(order, "first") })
	d.Add("order.updated", func(Event) { order = append(order, "second") })
	d.Add(Wildcard, func(Event) { order = append(order, "wildcard") })

	d.Dispatch(testEvent("order.updated"))

	want := []string{"first", "second", "wildcard"}
	if len(order) != len(want) {
		t.Fatalf("invoked %d handlers, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("invocation[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestDispatchTable_WildcardOnly(t *testing.T) {
	d := NewDispatchTable(nil)

	var got []string
	d.Add(Wildcard, func(evt Event) { got = append(got, evt.Type) })

	d.Dispatch(testEvent("order.created"))
	d.Dispatch(testEvent("inventory.alert"))

	if len(got) != 2 {
		t.Fatalf("wildcard handler invoked %d times, want 2", len(got))
	}
}

func TestDispatchTable_Unregister(t *testing.T) {
	d := NewDispatchTable(nil)

	var removed, sibling int
	unregister := d.Add("order.updated", func(Event) { removed++ })
	d.Add("order.updated", func(Event) { sibling++ })

	unregister()
	d.Dispatch(testEvent("order.updated"))

	if removed != 0 {
		t.Errorf("unregistered handler invoked %d times, want 0", removed)
	}
	if sibling != 1 {
		t.Errorf("sibling handler invoked %d times, want 1", sibling)
	}
}

func TestDispatchTable_UnregisterRemovesEmptyList(t *testing.T) {
	d := NewDispatchTable(nil)

	unregister := d.Add("order.updated", func(Event) {})
	unregister()

	if _, ok := d.handlers["order.updated"]; ok {
		t.Error("empty handler list not removed from table")
	}
}

func TestDispatchTable_UnregisterIdempotent(t *testing.T) {
	d := NewDispatchTable(nil)

	var calls int
	unregister := d.Add("order.updated", func(Event) { calls++ })
	d.Add("order.updated", func(Event) { calls++ })

	unregister()
	unregister()

	d.Dispatch(testEvent("order.updated"))
	if calls != 1 {
		t.Errorf("handlers invoked %d times after double unregister, want 1", calls)
	}
}

func TestDispatchTable_PanickingHandlerDoesNotStopSiblings(t *testing.T) {
	d := NewDispatchTable(nil)

	var after, wildcard int
	d.Add("order.updated", func(Event) { panic("handler failure") })
	d.Add("order.updated", func(Event) { after++ })
	d.Add(Wildcard, func(Event) { wildcard++ })

	d.Dispatch(testEvent("order.updated"))

	if after != 1 {
		t.Errorf("sibling handler invoked %d times, want 1", after)
	}
	if wildcard != 1 {
		t.Errorf("wildcard handler invoked %d times, want 1", wildcard)
	}
}

func TestDispatchTable_UnregisterFromInsideHandler(t *testing.T) {
	d := NewDispatchTable(nil)

	var calls int
	var unregister func()
	unregister = d.Add("order.updated", func(Event) {
		calls++
		unregister()
	})

	d.Dispatch(testEvent("order.updated"))
	d.Dispatch(testEvent("order.updated"))

	if calls != 1 {
		t.Errorf("self-unregistering handler invoked %d times, want 1", calls)
	}
}

func TestDispatchTable_HandlerCount(t *testing.T) {
	d := NewDispatchTable(nil)

	u1 := d.Add("order.updated", func(Event) {})
	d.Add("order.updated", func(Event) {})

	if got := d.HandlerCount("order.updated"); got != 2 {
		t.Errorf("HandlerCount = %d, want 2", got)
	}

	u1()
	if got := d.HandlerCount("order.updated"); got != 1 {
		t.Errorf("HandlerCount after unregister = %d, want 1", got)
	}
}
