package site

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"stadtwache/internal/client"
)

// Credentials is the input of the login form
type Credentials struct {
	Username string
	Password string
}

// Gate guards the admin dashboard behind the session
type Gate struct {
	session Session
	notify  Notifier
	log     *zap.Logger

	Form *Form[Credentials]

	mu  sync.Mutex
	err string
}

// NewGate creates a Gate over session
func NewGate(session Session, notify Notifier, log *zap.Logger) *Gate {
	return &Gate{session: session, notify: notify, log: log.Named("gate"), Form: NewForm(Credentials{})}
}

// View returns what the admin area shows for the current session. Nothing
// but the neutral verifying view renders while a restored token is checked.
func (g *Gate) View() AdminView {
	return adminView(g.session.State())
}

// Login submits the login form. Every rejection surfaces the same message.
func (g *Gate) Login(ctx context.Context) error {
	err := g.Form.Submit(ctx, func(ctx context.Context, c Credentials) error {
		_, err := g.session.Login(ctx, c.Username, c.Password)
		return err
	})

	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case err == nil:
		g.err = ""
	case errors.Is(err, ErrBusy):
	default:
		g.err = "Anmeldung fehlgeschlagen"
		failure(g.log, g.notify, g.err, err)
	}
	return err
}

// Error returns the message shown under the login form
func (g *Gate) Error() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

var _ Session = (*client.Session)(nil)
