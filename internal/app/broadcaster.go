package app

import (
	"sync"

	"livequiz-service/internal/domain"
)

const subscriberBuffer = 16

// Broadcaster fans quiz events out to all current observers of a quiz. Each
// quiz gets its own hub; publishing holds the hub lock, so every subscriber
// sees events for one quiz in the same relative order. Delivery is
// best-effort: a slow observer has its oldest buffered event dropped rather
// than blocking the feed, and recovers via a snapshot fetch.
type Broadcaster struct {
	mu   sync.RWMutex
	hubs map[string]*hub
}

type hub struct {
	mu   sync.Mutex
	seq  uint64
	subs map[chan domain.Event]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{hubs: make(map[string]*hub)}
}

// Publish assigns the event its per-quiz sequence number and delivers it to
// every subscriber of that quiz.
func (b *Broadcaster) Publish(quizID string, ev domain.Event) {
	h := b.hub(quizID)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	ev.QuizID = quizID
	ev.Seq = h.seq

	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// Slow observer: drop its oldest event to make room.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// Subscribe registers an observer for a quiz. The caller must invoke the
// returned cancel function to avoid leaks.
func (b *Broadcaster) Subscribe(quizID string) (<-chan domain.Event, func()) {
	h := b.hub(quizID)

	ch := make(chan domain.Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (b *Broadcaster) hub(quizID string) *hub {
	b.mu.RLock()
	h, ok := b.hubs[quizID]
	b.mu.RUnlock()
	if ok {
		return h
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if h, ok = b.hubs[quizID]; ok {
		return h
	}
	h = &hub{subs: make(map[chan domain.Event]struct{})}
	b.hubs[quizID] = h
	return h
}
