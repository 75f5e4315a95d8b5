package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"stadtwache/internal/client"
	"stadtwache/internal/domain"
	"stadtwache/internal/site"
)

var commands = map[string]command{
	"home":     {usage: "show the homepage and the latest news", run: cmdHome},
	"news":     {usage: "list published news", run: cmdNews},
	"about":    {usage: "show the about page", run: cmdAbout},
	"contact":  {usage: "show contact details", run: cmdContact},
	"types":    {usage: "list incident types for reports", run: cmdTypes},
	"chat":     {usage: "show the chat widget and its quick actions", run: cmdChat},
	"report":   {usage: "file an online report", run: cmdReport},
	"apply":    {usage: "send an application, optionally with a CV", run: cmdApply},
	"feedback": {usage: "send feedback", run: cmdFeedback},
	"message":  {usage: "leave a message through the chat widget", run: cmdMessage},

	"login":         {usage: "sign in as admin", admin: true, run: cmdLogin},
	"logout":        {usage: "sign out and revoke the token", admin: true, run: cmdLogout},
	"whoami":        {usage: "verify the stored token", admin: true, run: cmdWhoami},
	"list":          {usage: "list a dashboard tab (news|applications|feedback|reports|messages|buttons)", admin: true, run: cmdList},
	"respond":       {usage: "set status and answer: respond <applications|feedback|reports|messages> ID STATUS [RESPONSE]", admin: true, run: cmdRespond},
	"news-create":   {usage: "create a news item", admin: true, run: cmdNewsCreate},
	"news-delete":   {usage: "delete a news item", admin: true, run: cmdNewsDelete},
	"button-create": {usage: "create a chat quick action", admin: true, run: cmdButtonCreate},
	"button-delete": {usage: "delete a chat quick action", admin: true, run: cmdButtonDelete},
	"widget":        {usage: "switch the chat widget on or off", admin: true, run: cmdWidget},
}

func newFlags(a *app, name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(a.err)
	return flags
}

// show mounts v and waits for its result
func show[T any](ctx context.Context, v *site.View[T]) (T, error) {
	defer v.Unmount()
	select {
	case <-v.Mount(ctx):
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	_, data, err := v.Snapshot()
	return data, err
}

func cmdHome(ctx context.Context, a *app, _ []string) error {
	home, err := show(ctx, site.NewViews(a.api, a.notifier(), a.log).Home)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, home.Config.HeroTitle)
	fmt.Fprintln(a.out, home.Config.HeroSubtitle)
	fmt.Fprintf(a.out, "\nNotruf: %s\n", home.Config.EmergencyNumber)
	if len(home.Latest) > 0 {
		fmt.Fprintln(a.out, "\nAktuelle Meldungen:")
		printNews(a.out, home.Latest, false)
	}
	return nil
}

func cmdNews(ctx context.Context, a *app, _ []string) error {
	items, err := show(ctx, site.NewViews(a.api, a.notifier(), a.log).News)
	if err != nil {
		return err
	}
	printNews(a.out, items, false)
	return nil
}

func cmdAbout(ctx context.Context, a *app, _ []string) error {
	about, err := show(ctx, site.NewViews(a.api, a.notifier(), a.log).About)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\n%s\n\n%s\n", about.Title, about.Subtitle, about.Content)
	for _, section := range []struct {
		title string
		text  *string
	}{{"Mission", about.Mission}, {"Vision", about.Vision}, {"Werte", about.Values}, {"Geschichte", about.History}} {
		if section.text != nil && *section.text != "" {
			fmt.Fprintf(a.out, "\n%s\n%s\n", section.title, *section.text)
		}
	}
	return nil
}

func cmdContact(ctx context.Context, a *app, _ []string) error {
	c, err := show(ctx, site.NewViews(a.api, a.notifier(), a.log).Contact)
	if err != nil {
		return err
	}
	printPairs(a.out, [][2]string{
		{"Notruf", c.EmergencyNumber},
		{"Telefon", c.PhoneNumber},
		{"E-Mail", c.Email},
		{"Adresse", c.Address},
		{"Öffnungszeiten", c.OpeningHours},
	})
	return nil
}

func cmdTypes(ctx context.Context, a *app, _ []string) error {
	types, err := show(ctx, site.NewViews(a.api, a.notifier(), a.log).ReportTypes)
	if err != nil {
		return err
	}
	pairs := make([][2]string, 0, len(types))
	for _, t := range types {
		pairs = append(pairs, [2]string{t.Value, t.Label})
	}
	printPairs(a.out, pairs)
	return nil
}

func cmdChat(ctx context.Context, a *app, _ []string) error {
	chat := site.NewChat(a.api, a.notifier(), a.log)
	if err := chat.Mount(ctx); err != nil {
		return err
	}
	if err := chat.Open(); err != nil {
		return err
	}
	cfg := chat.Config()
	fmt.Fprintf(a.out, "%s\n%s\n\n", cfg.Title, cfg.WelcomeMessage)
	for _, b := range chat.Buttons() {
		res, err := chat.Press(b)
		if err != nil {
			continue
		}
		target := res.Target
		if res.Effect == site.EffectNone {
			target = "sitectl message"
			chat.Back()
		}
		fmt.Fprintf(a.out, "  %-24s %s\n", b.Label, target)
	}
	return nil
}

func cmdReport(ctx context.Context, a *app, args []string) error {
	flags := newFlags(a, "report")
	var in domain.ReportInput
	var witnessDetails, evidence, additional string
	flags.StringVar(&in.IncidentType, "type", "", "incident type (see sitectl types)")
	flags.StringVar(&in.Description, "description", "", "what happened")
	flags.StringVar(&in.Location, "location", "", "where it happened")
	flags.StringVar(&in.IncidentDate, "date", "", "date (YYYY-MM-DD)")
	flags.StringVar(&in.IncidentTime, "time", "", "time (HH:MM)")
	flags.StringVar(&in.ReporterName, "name", "", "your name")
	flags.StringVar(&in.ReporterEmail, "email", "", "your email address")
	flags.StringVar(&in.ReporterPhone, "phone", "", "your phone number")
	flags.BoolVar(&in.IsWitness, "witness", false, "you witnessed the incident")
	flags.StringVar(&witnessDetails, "witnesses", "", "other witnesses present")
	flags.StringVar(&evidence, "evidence", "", "evidence you can provide")
	flags.StringVar(&additional, "info", "", "additional information")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if witnessDetails != "" {
		in.WitnessesPresent, in.WitnessDetails = true, &witnessDetails
	}
	if evidence != "" {
		in.EvidenceAvailable, in.EvidenceDescription = true, &evidence
	}
	if additional != "" {
		in.AdditionalInfo = &additional
	}

	forms := site.NewPublicForms(a.api, a.notifier(), a.log)
	forms.Report.Edit(func(r *domain.ReportInput) { *r = in })
	report, err := forms.SubmitReport(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Aktenzeichen: %s\n", report.ID)
	return nil
}

func cmdApply(ctx context.Context, a *app, args []string) error {
	flags := newFlags(a, "apply")
	var in domain.ApplicationInput
	var cvPath string
	flags.StringVar(&in.Name, "name", "", "your name")
	flags.StringVar(&in.Email, "email", "", "your email address")
	flags.StringVar(&in.Phone, "phone", "", "your phone number")
	flags.StringVar(&in.Position, "position", domain.Positions[0], "position applied for")
	flags.StringVar(&in.Message, "message", "", "cover letter")
	flags.StringVar(&cvPath, "cv", "", "CV file (pdf, doc, docx)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	draft := site.ApplicationDraft{ApplicationInput: in}
	if cvPath != "" {
		f, err := os.Open(cvPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if draft.CV, err = client.ReadAttachment(filepath.Base(cvPath), f); err != nil {
			return err
		}
	}

	forms := site.NewPublicForms(a.api, a.notifier(), a.log)
	forms.Application.Edit(func(d *site.ApplicationDraft) { *d = draft })
	_, err := forms.SubmitApplication(ctx)
	return err
}

func cmdFeedback(ctx context.Context, a *app, args []string) error {
	flags := newFlags(a, "feedback")
	var in domain.FeedbackInput
	flags.StringVar(&in.Name, "name", "", "your name")
	flags.StringVar(&in.Email, "email", "", "your email address")
	flags.StringVar(&in.Subject, "subject", "", "subject")
	flags.StringVar(&in.Message, "message", "", "your feedback")
	flags.IntVar(&in.Rating, "rating", site.DefaultRating, "rating from 1 to 5")
	if err := flags.Parse(args); err != nil {
		return err
	}

	forms := site.NewPublicForms(a.api, a.notifier(), a.log)
	forms.Feedback.Edit(func(f *domain.FeedbackInput) { *f = in })
	_, err := forms.SubmitFeedback(ctx)
	return err
}

func cmdMessage(ctx context.Context, a *app, args []string) error {
	flags := newFlags(a, "message")
	var in domain.ChatMessageInput
	flags.StringVar(&in.VisitorName, "name", "", "your name")
	flags.StringVar(&in.VisitorEmail, "email", "", "your email address")
	flags.StringVar(&in.Message, "text", "", "your message")
	if err := flags.Parse(args); err != nil {
		return err
	}

	chat := site.NewChat(a.api, a.notifier(), a.log)
	if err := chat.Mount(ctx); err != nil {
		return err
	}
	if err := chat.WriteMessage(); err != nil {
		return err
	}
	chat.Form.Edit(func(m *domain.ChatMessageInput) { *m = in })
	return chat.Submit(ctx)
}
