// Package notify delivers user notifications as a side channel of the
// review workflow. Delivery is fire-and-forget: a failed notification is
// logged and never fails the operation that triggered it.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"citriq/internal/store"
	"citriq/pkg/domain"
)

// Notifier accepts a notification for a user. Implementations must not
// return errors to callers; failures are logged internally.
type Notifier interface {
	Notify(ctx context.Context, userID, message string)
}

// StoreNotifier persists notifications so users can fetch them from the
// notifications API.
type StoreNotifier struct {
	store store.Store
}

// NewStoreNotifier builds a persistence-backed notifier.
func NewStoreNotifier(s store.Store) *StoreNotifier {
	return &StoreNotifier{store: s}
}

// Notify inserts a notification row. Errors are swallowed after logging.
func (n *StoreNotifier) Notify(_ context.Context, userID, message string) {
	notification := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := n.store.SaveNotification(notification); err != nil {
		slog.Error("save notification", "user_id", userID, "err", err)
	}
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

// Notify delivers to every member.
func (m Multi) Notify(ctx context.Context, userID, message string) {
	for _, n := range m {
		n.Notify(ctx, userID, message)
	}
}

// Discard drops all notifications. Useful in tests.
type Discard struct{}

func (Discard) Notify(context.Context, string, string) {}
