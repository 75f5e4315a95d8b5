package site

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"stadtwache/internal/client"
	"stadtwache/internal/domain"
)

// Tab is a dashboard tab
type Tab string

const (
	TabNews         Tab = "news"
	TabApplications Tab = "applications"
	TabFeedback     Tab = "feedback"
	TabReports      Tab = "reports"
	TabHomepage     Tab = "homepage"
	TabAbout        Tab = "about"
	TabChat         Tab = "chat"
)

// Tabs lists the dashboard tabs in display order
var Tabs = []Tab{TabNews, TabApplications, TabFeedback, TabReports, TabHomepage, TabAbout, TabChat}

// DashboardData is everything the dashboard shows, loaded in one pass
type DashboardData struct {
	News         []domain.NewsItem
	Applications []domain.Application
	Feedback     []domain.Feedback
	Reports      []domain.Report
	Homepage     *domain.HomepageConfig
	About        *domain.AboutConfig
	ChatWidget   *domain.ChatWidgetConfig
	ChatButtons  []domain.ChatButton
	ChatMessages []domain.ChatMessage
}

// Dashboard is the admin editor over every resource
type Dashboard struct {
	api     *client.Client
	confirm Confirmer
	notify  Notifier
	log     *zap.Logger

	NewsForm   *Form[domain.NewsInput]
	ButtonForm *Form[domain.ChatButtonInput]

	mu   sync.Mutex
	tab  Tab
	data DashboardData
}

// NewDashboard creates a dashboard on the news tab
func NewDashboard(api *client.Client, confirm Confirmer, notify Notifier, log *zap.Logger) *Dashboard {
	return &Dashboard{
		api:        api,
		confirm:    confirm,
		notify:     notify,
		log:        log.Named("dashboard"),
		NewsForm:   NewForm(domain.NewsInput{Priority: domain.PriorityNormal}),
		ButtonForm: NewForm(domain.ChatButtonInput{Action: domain.ActionPhone}),
		tab:        TabNews,
	}
}

// Tab returns the active tab
func (d *Dashboard) Tab() Tab {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tab
}

// SelectTab switches tabs without fetching
func (d *Dashboard) SelectTab(tab Tab) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tab = tab
}

// Data returns the last loaded data
func (d *Dashboard) Data() DashboardData {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data
}

// Reload fetches every tab. A failed fetch keeps that tab's previous data
// and the whole reload reports one notification.
func (d *Dashboard) Reload(ctx context.Context) error {
	d.mu.Lock()
	next := d.data
	d.mu.Unlock()

	var errs []error
	refresh(ctx, &errs, &next.News, d.api.News.ListAdmin)
	refresh(ctx, &errs, &next.Applications, d.api.Applications.ListAdmin)
	refresh(ctx, &errs, &next.Feedback, d.api.Feedback.ListAdmin)
	refresh(ctx, &errs, &next.Reports, d.api.Reports.ListAdmin)
	refresh(ctx, &errs, &next.Homepage, d.api.Homepage.Get)
	refresh(ctx, &errs, &next.About, d.api.About.Get)
	refresh(ctx, &errs, &next.ChatWidget, d.api.ChatWidget.Get)
	refresh(ctx, &errs, &next.ChatButtons, d.api.ChatButtons.ListAdmin)
	refresh(ctx, &errs, &next.ChatMessages, d.api.ChatMessages.ListAdmin)

	d.mu.Lock()
	d.data = next
	d.mu.Unlock()

	if err := errors.Join(errs...); err != nil {
		failure(d.log, d.notify, "Fehler beim Laden der Daten", err)
		return err
	}
	return nil
}

func refresh[T any](ctx context.Context, errs *[]error, dst *T, fetch func(context.Context) (T, error)) {
	v, err := fetch(ctx)
	if err != nil {
		*errs = append(*errs, err)
		return
	}
	*dst = v
}

// act runs a write, reports its outcome once and reloads after success
func (d *Dashboard) act(ctx context.Context, ok, failed string, write func(context.Context) error) error {
	if err := write(ctx); err != nil {
		if !errors.Is(err, ErrBusy) {
			failure(d.log, d.notify, failed, err)
		}
		return err
	}
	success(d.notify, ok)
	// the reload reports its own failure
	_ = d.Reload(ctx)
	return nil
}

// confirmed asks before a delete; a declined prompt issues no request
func (d *Dashboard) confirmed(ctx context.Context, prompt string) bool {
	return d.confirm != nil && d.confirm.Confirm(ctx, prompt)
}

// CreateNews publishes the news form
func (d *Dashboard) CreateNews(ctx context.Context) error {
	return d.act(ctx, "Nachricht erstellt", "Fehler beim Erstellen der Nachricht", func(ctx context.Context) error {
		return d.NewsForm.Submit(ctx, func(ctx context.Context, in domain.NewsInput) error {
			_, err := d.api.News.Create(ctx, in)
			return err
		})
	})
}

func (d *Dashboard) UpdateNews(ctx context.Context, id string, patch domain.NewsPatch) error {
	return d.act(ctx, "Nachricht aktualisiert", "Fehler beim Aktualisieren der Nachricht", func(ctx context.Context) error {
		_, err := d.api.News.Update(ctx, id, patch)
		return err
	})
}

// DeleteNews deletes a news item once the user confirms
func (d *Dashboard) DeleteNews(ctx context.Context, id string) error {
	if !d.confirmed(ctx, "Nachricht wirklich löschen?") {
		return nil
	}
	return d.act(ctx, "Nachricht gelöscht", "Fehler beim Löschen der Nachricht", func(ctx context.Context) error {
		return d.api.News.Delete(ctx, id)
	})
}

func (d *Dashboard) RespondApplication(ctx context.Context, id, status, response string) error {
	return d.act(ctx, "Bewerbung aktualisiert", "Fehler beim Aktualisieren der Bewerbung", func(ctx context.Context) error {
		_, err := d.api.Applications.TransitionStatus(ctx, id, status, response)
		return err
	})
}

func (d *Dashboard) RespondFeedback(ctx context.Context, id, status, response string) error {
	return d.act(ctx, "Feedback aktualisiert", "Fehler beim Aktualisieren des Feedbacks", func(ctx context.Context) error {
		_, err := d.api.Feedback.TransitionStatus(ctx, id, status, response)
		return err
	})
}

func (d *Dashboard) UpdateReportStatus(ctx context.Context, id, status, response string) error {
	return d.act(ctx, "Anzeige aktualisiert", "Fehler beim Aktualisieren der Anzeige", func(ctx context.Context) error {
		_, err := d.api.Reports.TransitionStatus(ctx, id, status, response)
		return err
	})
}

func (d *Dashboard) RespondChatMessage(ctx context.Context, id, status, response string) error {
	return d.act(ctx, "Chat-Nachricht beantwortet", "Fehler beim Beantworten der Chat-Nachricht", func(ctx context.Context) error {
		_, err := d.api.ChatMessages.TransitionStatus(ctx, id, status, response)
		return err
	})
}

// UpdateHomepage saves the homepage; image may be nil
func (d *Dashboard) UpdateHomepage(ctx context.Context, patch domain.HomepagePatch, image *client.Attachment) error {
	return d.act(ctx, "Startseite gespeichert", "Fehler beim Speichern der Startseite", func(ctx context.Context) error {
		_, err := d.api.Homepage.Update(ctx, patch, image)
		return err
	})
}

// UpdateAbout saves the about page; image may be nil
func (d *Dashboard) UpdateAbout(ctx context.Context, patch domain.AboutPatch, image *client.Attachment) error {
	return d.act(ctx, "Über-uns-Seite gespeichert", "Fehler beim Speichern der Über-uns-Seite", func(ctx context.Context) error {
		_, err := d.api.About.Update(ctx, patch, image)
		return err
	})
}

func (d *Dashboard) UpdateChatWidget(ctx context.Context, patch domain.ChatWidgetPatch) error {
	return d.act(ctx, "Chat-Widget gespeichert", "Fehler beim Speichern des Chat-Widgets", func(ctx context.Context) error {
		_, err := d.api.ChatWidget.Update(ctx, patch)
		return err
	})
}

// CreateButton adds the chat button form
func (d *Dashboard) CreateButton(ctx context.Context) error {
	return d.act(ctx, "Chat-Button erstellt", "Fehler beim Erstellen des Chat-Buttons", func(ctx context.Context) error {
		return d.ButtonForm.Submit(ctx, func(ctx context.Context, in domain.ChatButtonInput) error {
			_, err := d.api.ChatButtons.Create(ctx, in)
			return err
		})
	})
}

func (d *Dashboard) UpdateButton(ctx context.Context, id string, patch domain.ChatButtonPatch) error {
	return d.act(ctx, "Chat-Button aktualisiert", "Fehler beim Aktualisieren des Chat-Buttons", func(ctx context.Context) error {
		_, err := d.api.ChatButtons.Update(ctx, id, patch)
		return err
	})
}

// DeleteButton deletes a chat button once the user confirms
func (d *Dashboard) DeleteButton(ctx context.Context, id string) error {
	if !d.confirmed(ctx, "Chat-Button wirklich löschen?") {
		return nil
	}
	return d.act(ctx, "Chat-Button gelöscht", "Fehler beim Löschen des Chat-Buttons", func(ctx context.Context) error {
		return d.api.ChatButtons.Delete(ctx, id)
	})
}
