package feed

import (
	"sync"

	"github.com/makrx/realtime/internal/realtime"
)

// View capacities. Small on purpose: these back recency widgets, not
// history.
const (
	OrderCapacity     = 10
	JobCapacity       = 10
	InventoryCapacity = 5
	ExportCapacity    = 5
)

// Source registers event handlers. Satisfied by *realtime.Manager.
type Source interface {
	On(eventType string, fn realtime.Handler) func()
}

// Feed is a bounded newest-first buffer of events for one domain.
// Insertion prepends and truncates the oldest entries past capacity.
type Feed struct {
	mu         sync.Mutex
	capacity   int
	events     []realtime.Event
	unregister []func()
}

// New creates a feed subscribed to the given event types on src.
func New(src Source, capacity int, eventTypes ...string) *Feed {
	f := &Feed{
		capacity: capacity,
		events:   make([]realtime.Event, 0, capacity),
	}
	for _, t := range eventTypes {
		f.unregister = append(f.unregister, src.On(t, f.push))
	}
	return f
}

// NewOrders tracks order lifecycle events.
func NewOrders(src Source) *Feed {
	return New(src, OrderCapacity,
		realtime.EventOrderCreated,
		realtime.EventOrderUpdated,
		realtime.EventOrderCompleted,
	)
}

// NewServiceJobs tracks service-job lifecycle and progress events.
func NewServiceJobs(src Source) *Feed {
	return New(src, JobCapacity,
		realtime.EventJobCreated,
		realtime.EventJobUpdated,
		realtime.EventJobCompleted,
		realtime.EventJobProgress,
	)
}

// NewInventoryAlerts tracks inventory alerts.
func NewInventoryAlerts(src Source) *Feed {
	return New(src, InventoryCapacity, realtime.EventInventoryAlert)
}

// NewExports tracks export completion events.
func NewExports(src Source) *Feed {
	return New(src, ExportCapacity,
		realtime.EventExportCompleted,
		realtime.EventExportFailed,
	)
}

// push inserts newest-first and evicts past capacity.
func (f *Feed) push(evt realtime.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append([]realtime.Event{evt}, f.events...)
	if len(f.events) > f.capacity {
		f.events = f.events[:f.capacity]
	}
}

// Recent returns a newest-first copy of the buffered events.
func (f *Feed) Recent() []realtime.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]realtime.Event, len(f.events))
	copy(out, f.events)
	return out
}

// Len returns the number of buffered events.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// Close unregisters all handlers. The feed receives nothing afterwards.
func (f *Feed) Close() {
	for _, u := range f.unregister {
		u()
	}
	f.unregister = nil
}
