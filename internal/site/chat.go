package site

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"stadtwache/internal/client"
	"stadtwache/internal/domain"
)

// ChatState is the chat widget's state
type ChatState int

const (
	ChatClosed ChatState = iota
	ChatMenu
	ChatMessageForm
)

func (s ChatState) String() string {
	switch s {
	case ChatMenu:
		return "menu"
	case ChatMessageForm:
		return "message_form"
	default:
		return "closed"
	}
}

// Effect tells the host what a button press requires of it
type Effect int

const (
	// EffectNone means the widget handled the press itself
	EffectNone Effect = iota
	// EffectNavigate means navigating to a mailto: or tel: target
	EffectNavigate
	// EffectOpenWindow means opening the target in a new browsing context
	EffectOpenWindow
)

// ButtonResult is the outcome of pressing a chat button
type ButtonResult struct {
	Effect Effect
	Target string
}

var (
	// ErrChatDisabled is returned when the widget is switched off or not loaded
	ErrChatDisabled = errors.New("chat widget disabled")
	// ErrUnknownAction is returned for a button whose action the widget does not know
	ErrUnknownAction = errors.New("unknown chat button action")
)

// Chat is the floating chat widget
type Chat struct {
	api    *client.Client
	notify Notifier
	log    *zap.Logger

	Form *Form[domain.ChatMessageInput]

	mu      sync.Mutex
	state   ChatState
	config  *domain.ChatWidgetConfig
	buttons []domain.ChatButton
}

// NewChat creates a closed, unloaded widget
func NewChat(api *client.Client, notify Notifier, log *zap.Logger) *Chat {
	return &Chat{api: api, notify: notify, log: log.Named("chat"), Form: NewForm(domain.ChatMessageInput{})}
}

// Mount fetches the widget configuration and its active buttons
func (c *Chat) Mount(ctx context.Context) error {
	cfg, err := c.api.ChatWidget.Get(ctx)
	if err != nil {
		c.log.Warn("chat widget unavailable", zap.Error(err))
		return err
	}
	buttons, err := c.api.ChatButtons.ListPublic(ctx)
	if err != nil {
		c.log.Warn("chat buttons unavailable", zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.config, c.buttons, c.state = cfg, buttons, ChatClosed
	return nil
}

// Unmount forgets the fetched configuration
func (c *Chat) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config, c.buttons, c.state = nil, nil, ChatClosed
}

// State returns the widget state
func (c *Chat) State() ChatState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Config returns the loaded configuration, nil before Mount
func (c *Chat) Config() *domain.ChatWidgetConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// Buttons returns the loaded quick actions in display order
func (c *Chat) Buttons() []domain.ChatButton {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buttons
}

// Open shows the menu. A disabled widget never opens.
func (c *Chat) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.config == nil || !c.config.Enabled {
		return ErrChatDisabled
	}
	if c.state == ChatClosed {
		c.state = ChatMenu
	}
	return nil
}

// Close hides the widget; a message draft survives
func (c *Chat) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ChatClosed
}

// Back returns from the message form to the menu
func (c *Chat) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ChatMessageForm {
		c.state = ChatMenu
	}
}

// Press runs a button's action
func (c *Chat) Press(b domain.ChatButton) (ButtonResult, error) {
	switch b.Action {
	case domain.ActionEmail:
		return ButtonResult{Effect: EffectNavigate, Target: "mailto:" + strings.TrimSpace(b.Value)}, nil
	case domain.ActionPhone:
		return ButtonResult{Effect: EffectNavigate, Target: "tel:" + strings.Join(strings.Fields(b.Value), "")}, nil
	case domain.ActionLink:
		return ButtonResult{Effect: EffectOpenWindow, Target: b.Value}, nil
	case domain.ActionMessage:
		if err := c.showMessageForm(); err != nil {
			return ButtonResult{}, err
		}
		c.Form.Edit(func(m *domain.ChatMessageInput) { m.Message = b.Value })
		return ButtonResult{Effect: EffectNone}, nil
	default:
		return ButtonResult{}, ErrUnknownAction
	}
}

// WriteMessage opens the message form, opening the widget first if needed
func (c *Chat) WriteMessage() error {
	return c.showMessageForm()
}

func (c *Chat) showMessageForm() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.config == nil || !c.config.Enabled {
		return ErrChatDisabled
	}
	c.state = ChatMessageForm
	return nil
}

// Submit posts the message form. Success returns to the menu; failure keeps
// the form and its draft.
func (c *Chat) Submit(ctx context.Context) error {
	if cfg := c.Config(); cfg == nil || !cfg.Enabled {
		return ErrChatDisabled
	}
	err := c.Form.Submit(ctx, func(ctx context.Context, in domain.ChatMessageInput) error {
		_, err := c.api.ChatMessages.Create(ctx, in)
		return err
	})
	switch {
	case err == nil:
		c.mu.Lock()
		c.state = ChatMenu
		c.mu.Unlock()
		success(c.notify, "Nachricht gesendet! Wir melden uns bald.")
	case errors.Is(err, ErrBusy):
	default:
		failure(c.log, c.notify, "Fehler beim Senden der Nachricht", err)
	}
	return err
}
