// Package visibility broadcasts the hosting process's shown/hidden state to
// every live viewport.
package visibility

import "sync"

// Source is what a viewport subscribes to. Cancel must be called when the
// subscriber goes away.
type Source interface {
	Subscribe(fn func(hidden bool)) (cancel func())
}

// Broadcaster is a Source that fans Publish calls out to subscribers.
// The zero value is ready to use.
type Broadcaster struct {
	mu     sync.Mutex
	next   int
	subs   map[int]func(bool)
	hidden bool
}

// NewBroadcaster returns an empty broadcaster in the shown state.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe registers fn and immediately tells it the current state.
func (b *Broadcaster) Subscribe(fn func(hidden bool)) func() {
	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[int]func(bool))
	}
	id := b.next
	b.next++
	b.subs[id] = fn
	hidden := b.hidden
	b.mu.Unlock()

	fn(hidden)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish records the new state and notifies every subscriber when it
// changed. Subscribers are called outside the lock.
func (b *Broadcaster) Publish(hidden bool) {
	b.mu.Lock()
	if b.hidden == hidden {
		b.mu.Unlock()
		return
	}
	b.hidden = hidden
	fns := make([]func(bool), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(hidden)
	}
}

// Hidden returns the last published state.
func (b *Broadcaster) Hidden() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hidden
}

// Len returns the number of live subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
