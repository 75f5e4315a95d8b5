package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stadtwache/internal/client"
	"stadtwache/internal/domain"
	apperrors "stadtwache/pkg/errors"
)

func TestChat_DisabledNeverOpens(t *testing.T) {
	b := newBackend(t)
	admin := adminClient(t, b)
	_, err := admin.ChatWidget.Update(t.Context(), domain.ChatWidgetPatch{Enabled: ptr(false)})
	require.NoError(t, err)

	chat := NewChat(client.New(client.Config{BaseURL: b.URL}, nil), nil, zap.NewNop())
	assert.ErrorIs(t, chat.Open(), ErrChatDisabled)

	require.NoError(t, chat.Mount(t.Context()))
	assert.ErrorIs(t, chat.Open(), ErrChatDisabled)
	assert.Equal(t, ChatClosed, chat.State())
}

func TestChat_FetchesOncePerMount(t *testing.T) {
	b := newBackend(t)
	chat := NewChat(client.New(client.Config{BaseURL: b.URL}, nil), nil, zap.NewNop())
	require.NoError(t, chat.Mount(t.Context()))

	for range 3 {
		require.NoError(t, chat.Open())
		assert.Equal(t, ChatMenu, chat.State())
		chat.Close()
	}
	assert.Equal(t, 1, b.count("GET", "/api/chat-widget"))
	assert.Equal(t, 1, b.count("GET", "/api/chat/buttons"))

	chat.Unmount()
	assert.Nil(t, chat.Config())
	assert.ErrorIs(t, chat.Open(), ErrChatDisabled)
}

func TestChat_ButtonActions(t *testing.T) {
	b := newBackend(t)
	chat := NewChat(client.New(client.Config{BaseURL: b.URL}, nil), nil, zap.NewNop())
	require.NoError(t, chat.Mount(t.Context()))

	res, err := chat.Press(domain.ChatButton{Action: domain.ActionEmail, Value: "info@stadtwache.de"})
	require.NoError(t, err)
	assert.Equal(t, ButtonResult{Effect: EffectNavigate, Target: "mailto:info@stadtwache.de"}, res)

	res, err = chat.Press(domain.ChatButton{Action: domain.ActionPhone, Value: "+49 123 456-789"})
	require.NoError(t, err)
	assert.Equal(t, ButtonResult{Effect: EffectNavigate, Target: "tel:+49123456-789"}, res)

	res, err = chat.Press(domain.ChatButton{Action: domain.ActionLink, Value: "https://stadtwache.de/faq"})
	require.NoError(t, err)
	assert.Equal(t, ButtonResult{Effect: EffectOpenWindow, Target: "https://stadtwache.de/faq"}, res)
	assert.Equal(t, ChatClosed, chat.State())

	res, err = chat.Press(domain.ChatButton{Action: domain.ActionMessage, Value: "Ich habe eine Frage zu meiner Anzeige."})
	require.NoError(t, err)
	assert.Equal(t, EffectNone, res.Effect)
	assert.Equal(t, ChatMessageForm, chat.State())
	assert.Equal(t, "Ich habe eine Frage zu meiner Anzeige.", chat.Form.Value().Message)

	_, err = chat.Press(domain.ChatButton{Action: "fax"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestChat_MessageFormNeedsEnabledWidget(t *testing.T) {
	b := newBackend(t)
	admin := adminClient(t, b)
	_, err := admin.ChatWidget.Update(t.Context(), domain.ChatWidgetPatch{Enabled: ptr(false)})
	require.NoError(t, err)

	chat := NewChat(client.New(client.Config{BaseURL: b.URL}, nil), nil, zap.NewNop())
	question := domain.ChatButton{Action: domain.ActionMessage, Value: "Wann ist die Wache besetzt?"}

	_, err = chat.Press(question)
	assert.ErrorIs(t, err, ErrChatDisabled)
	assert.ErrorIs(t, chat.WriteMessage(), ErrChatDisabled)

	require.NoError(t, chat.Mount(t.Context()))
	_, err = chat.Press(question)
	assert.ErrorIs(t, err, ErrChatDisabled)
	assert.ErrorIs(t, chat.WriteMessage(), ErrChatDisabled)
	assert.Equal(t, ChatClosed, chat.State())
	assert.Empty(t, chat.Form.Value().Message)

	chat.Form.Edit(func(m *domain.ChatMessageInput) { m.VisitorName, m.VisitorEmail, m.Message = "Lena", "lena@example.de", "Hallo" })
	assert.ErrorIs(t, chat.Submit(t.Context()), ErrChatDisabled)
	assert.Zero(t, b.count("POST", "/api/chat/messages"))
}

func TestChat_SubmitMessage(t *testing.T) {
	b := newBackend(t)
	notes := &notifications{}
	chat := NewChat(client.New(client.Config{BaseURL: b.URL}, nil), notes, zap.NewNop())
	require.NoError(t, chat.Mount(t.Context()))
	require.NoError(t, chat.Open())
	require.NoError(t, chat.WriteMessage())

	chat.Form.Edit(func(m *domain.ChatMessageInput) { m.VisitorName, m.VisitorEmail, m.Message = "Lena", "keine-adresse", "Hallo" })
	err := chat.Submit(t.Context())
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, ChatMessageForm, chat.State())
	assert.Equal(t, "Hallo", chat.Form.Value().Message)
	assert.Equal(t, []string{"Fehler beim Senden der Nachricht"}, notes.errors())

	chat.Form.Edit(func(m *domain.ChatMessageInput) { m.VisitorEmail = "lena@example.de" })
	require.NoError(t, chat.Submit(t.Context()))
	assert.Equal(t, ChatMenu, chat.State())
	assert.Equal(t, domain.ChatMessageInput{}, chat.Form.Value())
	assert.Equal(t, 1, b.count("POST", "/api/chat/messages"))

	require.NoError(t, chat.WriteMessage())
	chat.Back()
	assert.Equal(t, ChatMenu, chat.State())
}
