package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"stadtwache/internal/domain"
	"stadtwache/internal/metrics"
)

const notifyTimeout = 30 * time.Second

// Notifier alerts the duty desk about new public submissions. Delivery
// failures are logged and counted but never reach the submitter.
type Notifier struct {
	mailer    Mailer
	sms       SMSSender
	dutyEmail string
	dutyPhone string
	log       *zap.Logger
}

// NewNotifier creates a Notifier; dutyPhone may be empty to disable SMS alerts
func NewNotifier(mailer Mailer, sms SMSSender, dutyEmail, dutyPhone string, log *zap.Logger) *Notifier {
	return &Notifier{
		mailer:    mailer,
		sms:       sms,
		dutyEmail: dutyEmail,
		dutyPhone: dutyPhone,
		log:       log.Named("notify"),
	}
}

// Application notifies about a new job application
func (n *Notifier) Application(ctx context.Context, a *domain.Application) {
	if n == nil {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Neue Bewerbung eingegangen\n\n")
	fmt.Fprintf(&b, "Name: %s\nE-Mail: %s\nTelefon: %s\nStelle: %s\n", a.Name, a.Email, a.Phone, a.Position)
	if a.CVFilename != nil {
		fmt.Fprintf(&b, "Lebenslauf: %s\n", *a.CVFilename)
	}
	fmt.Fprintf(&b, "\n%s\n", a.Message)
	n.email(ctx, "Neue Bewerbung: "+a.Position, b.String())
}

// Report notifies about a new incident report; urgent types also page the duty phone
func (n *Notifier) Report(ctx context.Context, r *domain.Report) {
	if n == nil {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Neue Online-Anzeige (%s)\n\n", r.IncidentType)
	fmt.Fprintf(&b, "Ort: %s\nDatum: %s %s\n", r.Location, r.IncidentDate, r.IncidentTime)
	fmt.Fprintf(&b, "Meldende Person: %s <%s> %s\n", r.ReporterName, r.ReporterEmail, r.ReporterPhone)
	fmt.Fprintf(&b, "\n%s\n", r.Description)
	n.email(ctx, "Neue Anzeige: "+r.IncidentType, b.String())

	if domain.IsUrgentIncident(r.IncidentType) && n.dutyPhone != "" {
		msg := fmt.Sprintf("Stadtwache: dringende Anzeige (%s) in %s, Ref %s", r.IncidentType, r.Location, r.ID)
		err := n.sms.SendSMS(ctx, n.dutyPhone, msg)
		metrics.RecordNotification("sms", err == nil)
		if err != nil {
			n.log.Error("SMS alert failed", zap.String("report_id", r.ID), zap.Error(err))
		}
	}
}

// ChatMessage notifies about a new chat message
func (n *Notifier) ChatMessage(ctx context.Context, m *domain.ChatMessage) {
	if n == nil {
		return
	}
	body := fmt.Sprintf("Neue Chat-Nachricht von %s <%s>\n\n%s\n", m.VisitorName, m.VisitorEmail, m.Message)
	n.email(ctx, "Neue Chat-Nachricht", body)
}

func (n *Notifier) email(ctx context.Context, subject, body string) {
	if n.dutyEmail == "" {
		return
	}
	err := n.mailer.Send(ctx, n.dutyEmail, subject, body)
	metrics.RecordNotification("email", err == nil)
	if err != nil {
		n.log.Error("notification email failed", zap.String("subject", subject), zap.Error(err))
	}
}
