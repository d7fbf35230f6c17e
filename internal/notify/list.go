// Package notify provides a small observer list. Notifications are delivered
// synchronously on the caller's goroutine, in registration order.
package notify

import "sync"

type registration[T any] struct {
	id uint64
	fn func(T)
}

// List holds the registered observers for values of type T.
// The zero value is ready to use.
type List[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []registration[T]
}

// Add registers fn and returns a function that removes it again.
// The returned function may be called any number of times.
func (l *List[T]) Add(fn func(T)) (remove func()) {
	if fn == nil {
		return func() {}
	}

	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, registration[T]{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *List[T]) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, r := range l.subs {
		if r.id == id {
			// Copy so snapshots taken by an in-flight Notify stay intact.
			subs := make([]registration[T], 0, len(l.subs)-1)
			subs = append(subs, l.subs[:i]...)
			subs = append(subs, l.subs[i+1:]...)
			l.subs = subs
			return
		}
	}
}

// Notify calls every observer registered at the time of the call.
// Observers run outside the list's lock, so they may add or remove
// registrations (including their own) while being notified.
func (l *List[T]) Notify(v T) {
	l.mu.Lock()
	subs := l.subs
	l.mu.Unlock()

	for _, r := range subs {
		if l.active(r.id) {
			r.fn(v)
		}
	}
}

// active reports whether id is still registered. An observer removed by an
// earlier observer during the same Notify is skipped.
func (l *List[T]) active(id uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.subs {
		if r.id == id {
			return true
		}
	}
	return false
}

// Len returns the number of registered observers.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}
