// Package site holds the navigation and view state of the Stadtwache site:
// the public sections, the admin gate and dashboard, and the chat widget.
package site

import (
	"context"

	"go.uber.org/zap"

	"stadtwache/internal/client"
	apperrors "stadtwache/pkg/errors"
)

// Session is the part of the admin session the site drives
type Session interface {
	State() client.SessionState
	Subscribe(fn func(client.SessionState)) func()
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) error
}

// ErrBusy is returned when a form is submitted while its previous submission is in flight
var ErrBusy = apperrors.New(apperrors.ErrCodeBusy, "submission already in progress")

// Level classifies a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a short message shown to the user
type Notification struct {
	Level   Level
	Message string
}

// Notifier shows notifications
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Confirmer asks the user to approve a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// failure logs err and emits exactly one error notification for it
func failure(log *zap.Logger, notify Notifier, message string, err error) {
	log.Warn(message, zap.Error(err), zap.String("code", string(apperrors.CodeOf(err))))
	if notify != nil {
		notify.Notify(Notification{Level: LevelError, Message: message})
	}
}

func success(notify Notifier, message string) {
	if notify != nil {
		notify.Notify(Notification{Level: LevelSuccess, Message: message})
	}
}
