package session

import "sync"

const subscriberBuffer = 8

// Broadcaster fans session views out to subscribers. Publish never blocks:
// a subscriber that falls behind loses its oldest pending view, so it always
// ends up with the latest one.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan View]struct{}
}

// NewBroadcaster creates Broadcaster. Pass its Publish method to WithOnChange.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan View]struct{})}
}

// Subscribe registers a subscriber. The returned function unregisters it and
// closes the channel.
func (b *Broadcaster) Subscribe() (<-chan View, func()) {
	ch := make(chan View, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers v to every subscriber.
func (b *Broadcaster) Publish(v View) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- v:
			continue
		default:
		}

		// drop oldest
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// Subscribers returns the number of registered subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs)
}
