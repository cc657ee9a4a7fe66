package app

import (
	"context"
	"fmt"

	"citriq/pkg/domain"
)

// ListNotifications returns the caller's notifications, newest first.
func (a *App) ListNotifications(_ context.Context, p domain.Principal) ([]domain.Notification, error) {
	list, err := a.store.ListNotifications(p.ID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

// MarkNotificationRead flags one of the caller's notifications as read.
// Notifications belonging to other users are reported as not found.
func (a *App) MarkNotificationRead(_ context.Context, p domain.Principal, id string) (domain.Notification, error) {
	n, ok, err := a.store.MarkNotificationRead(id, p.ID)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("mark notification read: %w", err)
	}
	if !ok {
		return domain.Notification{}, notFoundf("notification not found")
	}
	return n, nil
}
