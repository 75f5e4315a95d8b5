package services

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stadtwache/internal/config"
	"stadtwache/internal/domain"
)

type fakeSES struct {
	input *ses.SendEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

type fakeSNS struct {
	input *sns.PublishInput
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	return &sns.PublishOutput{MessageId: aws.String("sms-1")}, nil
}

func TestSESMailer(t *testing.T) {
	client := &fakeSES{}
	mailer := NewSESMailer(client, &config.EmailConfig{FromEmail: "noreply@stadtwache.de", FromName: "Stadtwache"})

	require.NoError(t, mailer.Send(context.Background(), "wache@stadtwache.de", "Neue Anzeige", "Text"))
	require.NotNil(t, client.input)
	assert.Equal(t, []string{"wache@stadtwache.de"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Stadtwache <noreply@stadtwache.de>", aws.ToString(client.input.Source))
	assert.Equal(t, "Neue Anzeige", aws.ToString(client.input.Message.Subject.Data))
}

func TestSNSSender_NormalizesGermanNumbers(t *testing.T) {
	client := &fakeSNS{}
	sender := NewSNSSender(client)

	require.NoError(t, sender.SendSMS(context.Background(), "0170 1234567", "Alarm"))
	assert.Equal(t, "+491701234567", aws.ToString(client.input.PhoneNumber))

	require.NoError(t, sender.SendSMS(context.Background(), "+43 660 1234567", "Alarm"))
	assert.Equal(t, "+436601234567", aws.ToString(client.input.PhoneNumber))
}

func TestSMTPMailer(t *testing.T) {
	var gotAddr, gotFrom string
	var gotMsg []byte
	mailer := &SMTPMailer{
		cfg: &config.EmailConfig{SMTPHost: "smtp.example.de", SMTPPort: 587, Username: "u", Password: "p", FromEmail: "noreply@stadtwache.de"},
		send: func(addr string, _ smtp.Auth, from string, _ []string, msg []byte) error {
			gotAddr, gotFrom, gotMsg = addr, from, msg
			return nil
		},
	}

	require.NoError(t, mailer.Send(context.Background(), "wache@stadtwache.de", "Betreff", "Zeile 1\nZeile 2"))
	assert.Equal(t, "smtp.example.de:587", gotAddr)
	assert.Equal(t, "noreply@stadtwache.de", gotFrom)
	assert.True(t, strings.Contains(string(gotMsg), "Subject: Betreff\r\n"))
	assert.True(t, strings.Contains(string(gotMsg), "Zeile 1\r\nZeile 2"))
}

func TestNewMailer_ProviderSelection(t *testing.T) {
	ctx := context.Background()

	m, err := NewMailer(ctx, &config.EmailConfig{Enabled: false, Provider: "smtp"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &ConsoleMailer{}, m)

	_, err = NewMailer(ctx, &config.EmailConfig{Enabled: true, Provider: "smtp"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewMailer(ctx, &config.EmailConfig{Enabled: true, Provider: "carrier-pigeon"}, zap.NewNop())
	assert.Error(t, err)

	s, err := NewSMSSender(ctx, &config.SMSConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &ConsoleSMS{}, s)
}

func TestNotifier_MailFailureIsSwallowed(t *testing.T) {
	mailer := &fakeMailer{err: assert.AnError}
	sms := &fakeSMS{}
	n := NewNotifier(mailer, sms, "wache@stadtwache.de", "", zap.NewNop())

	n.Report(context.Background(), &domain.Report{ID: "r1", IncidentType: "notfall", Location: "Hbf"})
	assert.Len(t, mailer.subjects(), 1)
	// no duty phone configured
	assert.Zero(t, sms.count())

	var nilNotifier *Notifier
	nilNotifier.ChatMessage(context.Background(), &domain.ChatMessage{})
}
