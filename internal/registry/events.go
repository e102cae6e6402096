package registry

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cropcatalog/constants"
)

// Event is published after every state change of a document.
type Event struct {
	DocumentID uuid.UUID                `json:"documentId"`
	Name       string                   `json:"name"`
	Status     constants.DocumentStatus `json:"status"`
	Progress   int                      `json:"progress"`
	Stage      string                   `json:"stage,omitempty"`
	Run        int                      `json:"run"`
	Discarded  bool                     `json:"discarded,omitempty"`
	At         time.Time                `json:"at"`
}

type subscriber struct {
	ch chan Event
}

const defaultSubscriberBuffer = 256

// Subscribe returns a channel of events and a function that ends the
// subscription and closes the channel. Slow subscribers miss events rather
// than stalling processing.
func (r *Registry) Subscribe() (<-chan Event, func()) {
	s := &subscriber{ch: make(chan Event, defaultSubscriberBuffer)}

	r.subMu.Lock()
	r.subs[s] = struct{}{}
	r.subMu.Unlock()

	cancel := func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		if _, ok := r.subs[s]; ok {
			delete(r.subs, s)
			close(s.ch)
		}
	}
	return s.ch, cancel
}

// publish must be called with r.mu held so events leave in mutation order.
func (r *Registry) publish(ev Event) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for s := range r.subs {
		select {
		case s.ch <- ev:
		default:
			r.logger.Warn("registry.event.dropped", "doc_id", ev.DocumentID, "status", ev.Status, "progress", ev.Progress)
		}
	}
}
