package realtime

import (
	"log/slog"
	"sync"
)

// handlerEntry tags a callback with a removable handle.
type handlerEntry struct {
	id uint64
	fn Handler
}

// DispatchTable maps event types (plus the wildcard) to ordered handler
// lists. Handlers for the exact type run first, in registration order,
// then wildcard handlers. A panicking handler is logged and does not
// stop its siblings.
type DispatchTable struct {
	logger *slog.Logger

	mu       sync.Mutex
	nextID   uint64
	handlers map[string][]handlerEntry
}

// NewDispatchTable creates an empty dispatch table.
func NewDispatchTable(logger *slog.Logger) *DispatchTable {
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatchTable{
		logger:   logger,
		handlers: make(map[string][]handlerEntry),
	}
}

// Add registers a handler for an event type (or Wildcard) and returns
// its unregister function. Unregistering removes only this entry;
// sibling handlers for the same type keep running. The removal takes
// effect for subsequent dispatch passes, so it is safe to unregister
// from inside a handler.
func (d *DispatchTable) Add(eventType string, fn Handler) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.handlers[eventType] = append(d.handlers[eventType], handlerEntry{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.remove(eventType, id)
	}
}

// remove deletes the entry with the given handle, dropping the type's
// list entirely once it is empty.
func (d *DispatchTable) remove(eventType string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.handlers[eventType]
	for i, e := range entries {
		if e.id == id {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(entries) == 0 {
		delete(d.handlers, eventType)
		return
	}
	d.handlers[eventType] = entries
}

// Dispatch delivers an event to all exact-type handlers, then all
// wildcard handlers, each in registration order.
func (d *DispatchTable) Dispatch(evt Event) {
	for _, e := range d.snapshot(evt.Type) {
		d.invoke(e, evt)
	}
	for _, e := range d.snapshot(Wildcard) {
		d.invoke(e, evt)
	}
}

// HandlerCount returns the number of handlers registered for a type.
func (d *DispatchTable) HandlerCount(eventType string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers[eventType])
}

// snapshot copies the entry list so handlers run without the lock held.
func (d *DispatchTable) snapshot(key string) []handlerEntry {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.handlers[key]
	if len(entries) == 0 {
		return nil
	}
	out := make([]handlerEntry, len(entries))
	copy(out, entries)
	return out
}

// invoke runs a single handler, containing any panic.
func (d *DispatchTable) invoke(e handlerEntry, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"panic", r,
			)
		}
	}()
	e.fn(evt)
}
