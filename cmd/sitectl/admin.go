package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"stadtwache/internal/domain"
	"stadtwache/internal/site"
	apperrors "stadtwache/pkg/errors"
)

var errNotSignedIn = apperrors.New(apperrors.ErrCodeUnauthorized, "not signed in, run sitectl login")

// dashboard restores the stored session and opens the admin area
func (a *app) dashboard(ctx context.Context, yes bool) (*site.Dashboard, error) {
	if err := a.api.Session.Restore(ctx); err != nil {
		return nil, err
	}
	router := site.NewRouter("/admin", a.api.Session)
	defer router.Close()

	a.log.Debug("admin route", zap.String("route", site.Describe(router.Route())))
	if r, ok := router.Route().(site.AdminRoute); !ok || r.View != site.ViewDashboard {
		return nil, errNotSignedIn
	}
	return site.NewDashboard(a.api, a.confirmer(yes), a.notifier(), a.log), nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	flags := newFlags(a, "login")
	username := flags.StringP("username", "u", "admin", "admin username")
	password := flags.StringP("password", "p", os.Getenv("SITECTL_PASSWORD"), "password (default $SITECTL_PASSWORD, else read from stdin)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		fmt.Fprint(a.out, "Passwort: ")
		line, err := a.in.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	gate := site.NewGate(a.api.Session, a.notifier(), a.log)
	gate.Form.Edit(func(c *site.Credentials) { c.Username, c.Password = *username, *password })
	if err := gate.Login(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Angemeldet als %s\n", *username)
	return nil
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.api.Session.Restore(ctx); err != nil {
		a.log.Debug("logging out without verification")
	}
	router := site.NewRouter("/admin", a.api.Session)
	defer router.Close()
	if err := router.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Abgemeldet")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, _ []string) error {
	if _, err := a.dashboard(ctx, false); err != nil {
		return err
	}
	user := a.api.Session.User()
	fmt.Fprintf(a.out, "%s <%s>\n", user.DisplayName(), user.Email)
	return nil
}

var listTabs = map[string]site.Tab{
	"news":         site.TabNews,
	"applications": site.TabApplications,
	"feedback":     site.TabFeedback,
	"reports":      site.TabReports,
	"messages":     site.TabChat,
	"buttons":      site.TabChat,
}

func cmdList(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: sitectl list <news|applications|feedback|reports|messages|buttons>")
	}
	tab, ok := listTabs[args[0]]
	if !ok {
		return fmt.Errorf("unknown list %q", args[0])
	}
	d, err := a.dashboard(ctx, false)
	if err != nil {
		return err
	}
	d.SelectTab(tab)
	if err := d.Reload(ctx); err != nil {
		return err
	}

	data := d.Data()
	switch args[0] {
	case "news":
		printNews(a.out, data.News, true)
	case "applications":
		printApplications(a.out, data.Applications)
	case "feedback":
		printFeedback(a.out, data.Feedback)
	case "reports":
		printReports(a.out, data.Reports)
	case "messages":
		printMessages(a.out, data.ChatMessages)
	case "buttons":
		printButtons(a.out, data.ChatButtons)
	}
	return nil
}

func cmdRespond(ctx context.Context, a *app, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return errors.New("usage: sitectl respond <applications|feedback|reports|messages> ID STATUS [RESPONSE]")
	}
	entity, id, status := args[0], args[1], args[2]
	var response string
	if len(args) == 4 {
		response = args[3]
	}

	d, err := a.dashboard(ctx, false)
	if err != nil {
		return err
	}
	switch entity {
	case "applications":
		return d.RespondApplication(ctx, id, status, response)
	case "feedback":
		return d.RespondFeedback(ctx, id, status, response)
	case "reports":
		return d.UpdateReportStatus(ctx, id, status, response)
	case "messages":
		return d.RespondChatMessage(ctx, id, status, response)
	default:
		return fmt.Errorf("unknown entity %q", entity)
	}
}

func cmdNewsCreate(ctx context.Context, a *app, args []string) error {
	flags := newFlags(a, "news-create")
	title := flags.String("title", "", "headline")
	content := flags.String("content", "", "text")
	priority := flags.String("priority", domain.PriorityNormal, "normal, high or urgent")
	draft := flags.Bool("draft", false, "create unpublished")
	if err := flags.Parse(args); err != nil {
		return err
	}

	d, err := a.dashboard(ctx, false)
	if err != nil {
		return err
	}
	published := !*draft
	d.NewsForm.Edit(func(n *domain.NewsInput) {
		n.Title, n.Content, n.Priority, n.Published = *title, *content, *priority, &published
	})
	return d.CreateNews(ctx)
}

func cmdNewsDelete(ctx context.Context, a *app, args []string) error {
	flags := newFlags(a, "news-delete")
	yes := flags.BoolP("yes", "y", false, "do not ask for confirmation")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("usage: sitectl news-delete [--yes] ID")
	}
	d, err := a.dashboard(ctx, *yes)
	if err != nil {
		return err
	}
	return d.DeleteNews(ctx, flags.Arg(0))
}

func cmdButtonCreate(ctx context.Context, a *app, args []string) error {
	flags := newFlags(a, "button-create")
	var in domain.ChatButtonInput
	flags.StringVar(&in.Label, "label", "", "button label")
	flags.StringVar(&in.Action, "action", domain.ActionPhone, "email, phone, link or message")
	flags.StringVar(&in.Value, "value", "", "address, number, URL or message text")
	flags.IntVar(&in.Order, "order", 0, "display position")
	hidden := flags.Bool("hidden", false, "create inactive")
	if err := flags.Parse(args); err != nil {
		return err
	}

	d, err := a.dashboard(ctx, false)
	if err != nil {
		return err
	}
	active := !*hidden
	in.Active = &active
	d.ButtonForm.Edit(func(b *domain.ChatButtonInput) { *b = in })
	return d.CreateButton(ctx)
}

func cmdButtonDelete(ctx context.Context, a *app, args []string) error {
	flags := newFlags(a, "button-delete")
	yes := flags.BoolP("yes", "y", false, "do not ask for confirmation")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("usage: sitectl button-delete [--yes] ID")
	}
	d, err := a.dashboard(ctx, *yes)
	if err != nil {
		return err
	}
	return d.DeleteButton(ctx, flags.Arg(0))
}

func cmdWidget(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return errors.New("usage: sitectl widget <on|off>")
	}
	d, err := a.dashboard(ctx, false)
	if err != nil {
		return err
	}
	enabled := args[0] == "on"
	return d.UpdateChatWidget(ctx, domain.ChatWidgetPatch{Enabled: &enabled})
}
