// Package app holds the core workflow: task registry, submission store
// operations, and the review assignment engine that links them.
package app

import (
	"errors"
	"time"

	"citriq/internal/googleauth"
	"citriq/internal/notify"
	"citriq/internal/storage"
	"citriq/internal/store"
	"citriq/internal/token"
)

// Config wires required dependencies for the core application.
type Config struct {
	Store    store.Store
	Files    storage.FileStore
	Notifier notify.Notifier
	Tokens   *token.Manager
	Google   googleauth.Verifier

	// AutoMarkReviewed advances a submission to "reviewed" when its last
	// outstanding peer review completes. Off by default: the historical
	// behavior never performs this transition.
	AutoMarkReviewed bool
	// RejectSelfReview makes the engine refuse assignments where the
	// reviewer owns the submission. Off by default: historically only the
	// client UI filtered the reviewer list.
	RejectSelfReview bool

	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// App is the application service coordinating stores, files, sessions
// and notifications.
type App struct {
	store            store.Store
	files            storage.FileStore
	notifier         notify.Notifier
	tokens           *token.Manager
	google           googleauth.Verifier
	autoMarkReviewed bool
	rejectSelfReview bool
	now              func() time.Time
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Files == nil {
		return nil, errors.New("file store is required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("token manager is required")
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NewStoreNotifier(cfg.Store)
	}
	now := cfg.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &App{
		store:            cfg.Store,
		files:            cfg.Files,
		notifier:         notifier,
		tokens:           cfg.Tokens,
		google:           cfg.Google,
		autoMarkReviewed: cfg.AutoMarkReviewed,
		rejectSelfReview: cfg.RejectSelfReview,
		now:              now,
	}, nil
}
