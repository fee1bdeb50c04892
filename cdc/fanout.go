package cdc

import "sync"

// bufferSize bounds each subscriber's channel so one slow reader can never
// block delivery to the others, per spec.md §4.7.
const bufferSize = 64

type sink struct {
	subs []chan Event
}

// Hub is the per-table multicast fan-out: one sink per table, created
// lazily on first subscribe and retired on last unsubscribe. The sink map
// is guarded by a short-held mutex; Publish copies the subscriber list out
// from under the lock before doing any channel sends.
type Hub struct {
	mu    sync.Mutex
	sinks map[string]*sink
}

func NewHub() *Hub {
	return &Hub{sinks: map[string]*sink{}}
}

// Subscribe registers a new listener for table and returns a channel that
// receives every subsequent Event for it, plus an unsubscribe function.
// Reference counting is implicit in len(sink.subs): the sink is retired the
// moment its subscriber list empties.
func (h *Hub) Subscribe(table string) (<-chan Event, func()) {
	ch := make(chan Event, bufferSize)

	h.mu.Lock()
	s, ok := h.sinks[table]
	if !ok {
		s = &sink{}
		h.sinks[table] = s
	}
	s.subs = append(s.subs, ch)
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			s, ok := h.sinks[table]
			if !ok {
				return
			}
			for i, c := range s.subs {
				if c == ch {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					break
				}
			}
			if len(s.subs) == 0 {
				delete(h.sinks, table)
			}
			close(ch)
		})
	}

	return ch, unsubscribe
}

// Publish delivers ev to every current subscriber of ev.Table, in decode
// order, without blocking on any single slow subscriber. If the table has
// no sink (no subscribers, or the sink was just retired) the event is
// simply dropped — the next Subscribe call creates a fresh sink.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	s, ok := h.sinks[ev.Table]
	var subs []chan Event
	if ok {
		subs = append(subs, s.subs...)
	}
	h.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			// Bounded per-subscriber buffer full: drop for this
			// subscriber rather than block the others.
		}
	}
}
