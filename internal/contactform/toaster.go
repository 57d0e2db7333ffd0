package contactform

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultToastTTL is how long a toast stays visible
const DefaultToastTTL = 4500 * time.Millisecond

// Variant styles a toast
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
)

// Toast is one transient notification
type Toast struct {
	ID      string
	Message string
	Variant Variant
}

// Toaster keeps the ordered list of visible toasts and removes each one
// after its TTL.
type Toaster struct {
	mu        sync.Mutex
	ttl       time.Duration
	toasts    []Toast
	timers    map[string]*time.Timer
	closed    bool
	onChange  []func([]Toast)
	onDismiss []func(Toast)
}

// ToasterOption configures a Toaster
type ToasterOption func(*Toaster)

// WithTTL overrides DefaultToastTTL
func WithTTL(ttl time.Duration) ToasterOption {
	return func(t *Toaster) { t.ttl = ttl }
}

// WithOnChange registers a callback receiving the visible toasts after
// every change
func WithOnChange(fn func([]Toast)) ToasterOption {
	return func(t *Toaster) { t.onChange = append(t.onChange, fn) }
}

// NewToaster creates a Toaster
func NewToaster(opts ...ToasterOption) *Toaster {
	t := &Toaster{
		ttl:    DefaultToastTTL,
		timers: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnDismiss registers a callback run whenever a toast is removed
func (t *Toaster) OnDismiss(fn func(Toast)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDismiss = append(t.onDismiss, fn)
}

// Push shows a toast and schedules its removal. After Close it is a no-op
// and returns a zero Toast.
func (t *Toaster) Push(message string, variant Variant) Toast {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return Toast{}
	}

	toast := Toast{ID: uuid.NewString(), Message: message, Variant: variant}
	t.toasts = append(t.toasts, toast)
	t.timers[toast.ID] = time.AfterFunc(t.ttl, func() { t.Dismiss(toast.ID) })
	snapshot, onChange := t.snapshotLocked(), t.onChange
	t.mu.Unlock()

	for _, fn := range onChange {
		fn(snapshot)
	}
	return toast
}

// Dismiss removes a toast early and reports whether it was visible
func (t *Toaster) Dismiss(id string) bool {
	t.mu.Lock()
	var removed *Toast
	for i := range t.toasts {
		if t.toasts[i].ID == id {
			toast := t.toasts[i]
			removed = &toast
			t.toasts = append(t.toasts[:i], t.toasts[i+1:]...)
			break
		}
	}
	if removed == nil {
		t.mu.Unlock()
		return false
	}
	if timer, ok := t.timers[id]; ok {
		timer.Stop()
		delete(t.timers, id)
	}
	snapshot, onChange, onDismiss := t.snapshotLocked(), t.onChange, t.onDismiss
	t.mu.Unlock()

	for _, fn := range onDismiss {
		fn(*removed)
	}
	for _, fn := range onChange {
		fn(snapshot)
	}
	return true
}

// Active returns the visible toasts, oldest first
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Toaster) visible(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, toast := range t.toasts {
		if toast.ID == id {
			return true
		}
	}
	return false
}

// Close stops all pending timers and clears the list
func (t *Toaster) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
	t.toasts = nil
	t.closed = true
}

func (t *Toaster) snapshotLocked() []Toast {
	out := make([]Toast, len(t.toasts))
	copy(out, t.toasts)
	return out
}
