package site

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"stadtwache/internal/client"
	"stadtwache/internal/domain"
)

// Form holds the input of one form and guards it against double submission.
// A successful submit resets the input; a failed one keeps it.
type Form[T any] struct {
	mu      sync.Mutex
	value   T
	initial T
	busy    bool
	err     error
}

// NewForm creates a form starting (and resetting) to initial
func NewForm[T any](initial T) *Form[T] {
	return &Form[T]{value: initial, initial: initial}
}

// Value returns the current input
func (f *Form[T]) Value() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Edit changes the current input
func (f *Form[T]) Edit(fn func(*T)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.value)
}

// Busy reports whether a submission is in flight
func (f *Form[T]) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Err returns the error of the last submission
func (f *Form[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Submit runs send with a snapshot of the input. It fails with ErrBusy while
// another submission of this form is in flight.
func (f *Form[T]) Submit(ctx context.Context, send func(context.Context, T) error) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return ErrBusy
	}
	f.busy = true
	input := f.value
	f.mu.Unlock()

	err := send(ctx, input)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	f.err = err
	if err == nil {
		f.value = f.initial
	}
	return err
}

// ApplicationDraft is the input of the application form
type ApplicationDraft struct {
	domain.ApplicationInput
	CV *client.Attachment
}

// PublicForms are the three citizen-facing submission forms
type PublicForms struct {
	api    *client.Client
	notify Notifier
	log    *zap.Logger

	Report      *Form[domain.ReportInput]
	Application *Form[ApplicationDraft]
	Feedback    *Form[domain.FeedbackInput]
}

// DefaultRating is the preselected feedback rating
const DefaultRating = 5

// NewPublicForms creates empty forms
func NewPublicForms(api *client.Client, notify Notifier, log *zap.Logger) *PublicForms {
	return &PublicForms{
		api:         api,
		notify:      notify,
		log:         log.Named("forms"),
		Report:      NewForm(domain.ReportInput{}),
		Application: NewForm(ApplicationDraft{ApplicationInput: domain.ApplicationInput{Position: domain.Positions[0]}}),
		Feedback:    NewForm(domain.FeedbackInput{Rating: DefaultRating}),
	}
}

// SubmitReport sends the online report form
func (p *PublicForms) SubmitReport(ctx context.Context) (*domain.Report, error) {
	var created *domain.Report
	err := p.Report.Submit(ctx, func(ctx context.Context, in domain.ReportInput) error {
		var err error
		created, err = p.api.Reports.Create(ctx, in)
		return err
	})
	return created, p.outcome(err, "Anzeige erfolgreich übermittelt!", "Fehler beim Übermitteln der Anzeige")
}

// SubmitApplication sends the application form with its optional CV
func (p *PublicForms) SubmitApplication(ctx context.Context) (*domain.Application, error) {
	var created *domain.Application
	err := p.Application.Submit(ctx, func(ctx context.Context, d ApplicationDraft) error {
		var err error
		created, err = p.api.Applications.Create(ctx, d.ApplicationInput, d.CV)
		return err
	})
	return created, p.outcome(err, "Bewerbung erfolgreich eingereicht!", "Fehler beim Einreichen der Bewerbung")
}

// SubmitFeedback sends the feedback form
func (p *PublicForms) SubmitFeedback(ctx context.Context) (*domain.Feedback, error) {
	var created *domain.Feedback
	err := p.Feedback.Submit(ctx, func(ctx context.Context, in domain.FeedbackInput) error {
		var err error
		created, err = p.api.Feedback.Create(ctx, in)
		return err
	})
	return created, p.outcome(err, "Feedback erfolgreich eingereicht!", "Fehler beim Einreichen des Feedbacks")
}

func (p *PublicForms) outcome(err error, ok, failed string) error {
	switch {
	case err == nil:
		success(p.notify, ok)
	case errors.Is(err, ErrBusy):
		// the running submission reports for itself
	default:
		failure(p.log, p.notify, failed, err)
	}
	return err
}
