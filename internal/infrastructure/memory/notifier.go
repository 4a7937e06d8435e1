package memory

import (
	"context"
	"sync"

	"github.com/vlehub/user-service/internal/application/auth"
)

// NoopNotifier drops notifications. Used in dev when RabbitMQ is down.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (NoopNotifier) Send(ctx context.Context, n auth.Notification) error { return nil }

// RecordingNotifier captures notifications for assertions in tests.
type RecordingNotifier struct {
	mu   sync.Mutex
	Sent []auth.Notification
}

func NewRecordingNotifier() *RecordingNotifier { return &RecordingNotifier{} }

func (r *RecordingNotifier) Send(ctx context.Context, n auth.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, n)
	return nil
}

func (r *RecordingNotifier) All() []auth.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]auth.Notification, len(r.Sent))
	copy(out, r.Sent)
	return out
}
