package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"stadtwache/internal/config"
)

// Mailer delivers a plain-text email
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SESAPI is the part of the SES client the mailer uses
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// NewMailer builds the mailer selected by EMAIL_PROVIDER. A disabled email
// configuration always yields the console mailer.
func NewMailer(ctx context.Context, cfg *config.EmailConfig, log *zap.Logger) (Mailer, error) {
	if !cfg.Enabled {
		return &ConsoleMailer{log: log.Named("email")}, nil
	}
	switch strings.ToLower(cfg.Provider) {
	case "smtp":
		if cfg.SMTPHost == "" || cfg.Username == "" || cfg.Password == "" {
			return nil, fmt.Errorf("email service not properly configured")
		}
		return &SMTPMailer{cfg: cfg, send: smtp.SendMail}, nil
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return NewSESMailer(ses.NewFromConfig(awsCfg), cfg), nil
	case "console", "dev", "development":
		return &ConsoleMailer{log: log.Named("email")}, nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Provider)
	}
}

// ConsoleMailer logs mail instead of sending it
type ConsoleMailer struct {
	log *zap.Logger
}

func (m *ConsoleMailer) Send(_ context.Context, to, subject, body string) error {
	m.log.Info("email would be sent", zap.String("to", to), zap.String("subject", subject), zap.Int("body_bytes", len(body)))
	return nil
}

// SMTPMailer sends mail through an authenticated SMTP relay
type SMTPMailer struct {
	cfg  *config.EmailConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)

	from := m.cfg.FromEmail
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromEmail)
	}

	message := fmt.Sprintf("From: %s\r\n", from) +
		fmt.Sprintf("To: %s\r\n", to) +
		fmt.Sprintf("Subject: %s\r\n", subject) +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		strings.ReplaceAll(body, "\n", "\r\n") + "\r\n"

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	if err := m.send(addr, auth, m.cfg.FromEmail, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SESMailer sends mail through Amazon SES
type SESMailer struct {
	client SESAPI
	from   string
}

// NewSESMailer creates an SES-backed mailer
func NewSESMailer(client SESAPI, cfg *config.EmailConfig) *SESMailer {
	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}
	return &SESMailer{client: client, from: from}
}

func (m *SESMailer) Send(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(m.from),
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}
