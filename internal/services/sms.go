package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"stadtwache/internal/config"
)

// SMSSender delivers a short text message
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message string) error
}

// SNSAPI is the part of the SNS client the sender uses
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// NewSMSSender builds the sender selected by SMS_PROVIDER
func NewSMSSender(ctx context.Context, cfg *config.SMSConfig, log *zap.Logger) (SMSSender, error) {
	if !cfg.Enabled {
		return &ConsoleSMS{log: log.Named("sms")}, nil
	}
	switch strings.ToLower(cfg.Provider) {
	case "sns", "aws":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return &SNSSender{client: sns.NewFromConfig(awsCfg)}, nil
	case "console", "dev", "development":
		return &ConsoleSMS{log: log.Named("sms")}, nil
	default:
		return nil, fmt.Errorf("unsupported SMS provider: %s", cfg.Provider)
	}
}

// ConsoleSMS logs messages instead of sending them
type ConsoleSMS struct {
	log *zap.Logger
}

func (s *ConsoleSMS) SendSMS(_ context.Context, phoneNumber, message string) error {
	s.log.Info("SMS would be sent", zap.String("to", phoneNumber), zap.String("message", message))
	return nil
}

// SNSSender publishes SMS through Amazon SNS
type SNSSender struct {
	client SNSAPI
}

// NewSNSSender wraps an SNS client
func NewSNSSender(client SNSAPI) *SNSSender {
	return &SNSSender{client: client}
}

func (s *SNSSender) SendSMS(ctx context.Context, phoneNumber, message string) error {
	// SNS wants E.164
	normalized := strings.ReplaceAll(phoneNumber, " ", "")
	if !strings.HasPrefix(normalized, "+") {
		normalized = "+49" + strings.TrimPrefix(normalized, "0")
	}
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(normalized),
		Message:     aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
