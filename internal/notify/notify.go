package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one transient message shown to the operator.
type Notice struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

type Notifier interface {
	Notify(ctx context.Context, level Level, message string)
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, level Level, message string)

func (f Func) Notify(ctx context.Context, level Level, message string) { f(ctx, level, message) }

// Discard drops every notice.
var Discard Notifier = Func(func(context.Context, Level, string) {})

const defaultToastLimit = 50

// Toasts queues notices for one console session until the browser drains them.
// The oldest notice is dropped once the queue is full.
type Toasts struct {
	mu    sync.Mutex
	items []Notice
	limit int
}

func NewToasts(limit int) *Toasts {
	if limit <= 0 {
		limit = defaultToastLimit
	}
	return &Toasts{limit: limit}
}

func (t *Toasts) Notify(_ context.Context, level Level, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, Notice{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		Time:    time.Now(),
	})
	if over := len(t.items) - t.limit; over > 0 {
		t.items = append([]Notice(nil), t.items[over:]...)
	}
}

// Drain returns the queued notices and empties the queue.
func (t *Toasts) Drain() []Notice {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.items
	t.items = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

func (t *Toasts) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Multi fans a notice out to every non-nil notifier.
func Multi(notifiers ...Notifier) Notifier {
	var live []Notifier
	for _, n := range notifiers {
		if n != nil {
			live = append(live, n)
		}
	}
	return Func(func(ctx context.Context, level Level, message string) {
		for _, n := range live {
			n.Notify(ctx, level, message)
		}
	})
}

// OrDiscard returns n, or Discard when n is nil.
func OrDiscard(n Notifier) Notifier {
	if n == nil {
		return Discard
	}
	return n
}
