// Package notify holds transient user-facing messages with auto-expiry.
package notify

import (
	"strconv"
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

const DefaultDuration = 5 * time.Second

type Notification struct {
	ID        string
	Kind      Kind
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// Queue is an append-only list of live notifications; each entry schedules
// its own removal. Ids are nanosecond timestamps; two shows in the same
// nanosecond would collide, which is accepted rather than guarded.
type Queue struct {
	mu       sync.Mutex
	items    []Notification
	timers   map[string]*time.Timer
	onChange func()
}

func NewQueue() *Queue {
	return &Queue{timers: map[string]*time.Timer{}}
}

// SetOnChange registers a callback fired after every append or removal.
// The TUI uses it to wake the render loop.
func (q *Queue) SetOnChange(f func()) {
	q.mu.Lock()
	q.onChange = f
	q.mu.Unlock()
}

// Show appends a notification and schedules its removal after d.
// A non-positive d falls back to DefaultDuration.
func (q *Queue) Show(kind Kind, message string, d time.Duration) string {
	if d <= 0 {
		d = DefaultDuration
	}
	now := time.Now()
	n := Notification{
		ID:        strconv.FormatInt(now.UnixNano(), 10),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
		Duration:  d,
	}

	q.mu.Lock()
	q.items = append(q.items, n)
	q.timers[n.ID] = time.AfterFunc(d, func() { q.Dismiss(n.ID) })
	f := q.onChange
	q.mu.Unlock()

	if f != nil {
		f()
	}
	return n.ID
}

// Dismiss removes a notification early and cancels its pending timer.
// Unknown ids are ignored.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	kept := q.items[:0]
	for _, n := range q.items {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	q.items = kept
	f := q.onChange
	q.mu.Unlock()

	if f != nil {
		f()
	}
}

// Active returns a copy of the live notifications, oldest first.
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
