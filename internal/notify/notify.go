package notify

import (
	"context"
	"sync"

	"github.com/akosarev/storefront/internal/logging"
)

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notifier receives transient user-facing notifications, such as the error
// indicator shown after a failed cart mutation. Implementations must not
// block the caller for long.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, message string)
}

// LogNotifier writes notifications to the context logger.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, severity Severity, message string) {
	l := logging.FromContext(ctx).With("notification", true)
	if severity == SeverityError {
		l.Error(message)
		return
	}
	l.Info(message)
}

// Recorder collects notifications for assertions in tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

type Entry struct {
	Severity Severity
	Message  string
}

func (r *Recorder) Notify(_ context.Context, severity Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Severity: severity, Message: message})
}

func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
