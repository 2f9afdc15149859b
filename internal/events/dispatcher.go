// Package events carries test-runner lifecycle events to subscribed
// handlers in priority order.
package events

import (
	"context"
	"sort"
	"sync"
)

// Name identifies a lifecycle event.
type Name string

const (
	BeforeSuite   Name = "beforeSuite"
	BeforeExample Name = "beforeExample"
	AfterExample  Name = "afterExample"
	AfterSuite    Name = "afterSuite"
)

// DefaultPriority is the priority of handlers that do not ask for one.
const DefaultPriority = 0

// Example describes the example an event is about. Spec may be empty
// when the runner does not group examples.
type Example struct {
	Spec string
	Name string
}

// Event is delivered to handlers. Example is nil for suite events.
type Event struct {
	Name    Name
	Example *Example
}

// Handler reacts to an event. A non-nil error stops the dispatch.
type Handler func(ctx context.Context, e Event) error

// Subscription binds a handler to an event at a priority. Higher
// priorities run first.
type Subscription struct {
	Event    Name
	Handler  Handler
	Priority int
}

// Dispatcher delivers events to subscriptions synchronously.
type Dispatcher struct {
	mu   sync.RWMutex
	subs map[Name][]Subscription
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[Name][]Subscription)}
}

// Subscribe registers subscriptions. Within one priority, handlers keep
// their registration order.
func (d *Dispatcher) Subscribe(subs ...Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.subs == nil {
		d.subs = make(map[Name][]Subscription)
	}
	for _, s := range subs {
		if s.Handler == nil {
			continue
		}
		list := append(d.subs[s.Event], s)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority > list[j].Priority
		})
		d.subs[s.Event] = list
	}
}

// Listeners returns the subscriptions for an event in dispatch order.
func (d *Dispatcher) Listeners(name Name) []Subscription {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Subscription(nil), d.subs[name]...)
}

// Dispatch runs every handler subscribed to e.Name. The first error is
// returned unchanged and later handlers are skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) error {
	for _, s := range d.Listeners(e.Name) {
		if err := s.Handler(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
