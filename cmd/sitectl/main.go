// Command sitectl is a terminal front-end for the Stadtwache site: it shows the
// public sections, submits the public forms and runs the admin dashboard.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"stadtwache/internal/client"
	"stadtwache/internal/config"
	"stadtwache/internal/logger"
	"stadtwache/internal/site"
	apperrors "stadtwache/pkg/errors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitectl: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg, os.Args[1:], stdio{in: os.Stdin, out: os.Stdout, err: os.Stderr}))
}

type stdio struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

type app struct {
	api *client.Client
	log *zap.Logger
	in  *bufio.Reader
	out io.Writer
	err io.Writer
}

type command struct {
	usage string
	admin bool
	run   func(ctx context.Context, a *app, args []string) error
}

func run(ctx context.Context, cfg *config.Config, args []string, std stdio) int {
	flags := pflag.NewFlagSet("sitectl", pflag.ContinueOnError)
	flags.SetOutput(std.err)
	flags.SetInterspersed(false)
	backend := flags.String("backend", cfg.Client.BackendURL, "backend base URL")
	tokenFile := flags.String("token-file", cfg.Client.TokenFile, "where the admin token is kept")
	verbose := flags.BoolP("verbose", "v", false, "log requests")
	flags.Usage = func() { usage(std.err, flags) }
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		usage(std.err, flags)
		return 2
	}

	name, rest := flags.Arg(0), flags.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(std.err, "sitectl: unknown command %q\n", name)
		usage(std.err, flags)
		return 2
	}

	log := zap.NewNop()
	if *verbose {
		log = logger.Must("debug", false)
	}

	a := &app{
		api: client.New(client.Config{
			BaseURL:    *backend,
			Timeout:    cfg.Client.RequestTimeout,
			CacheReads: cfg.Client.CacheReads,
			Log:        log,
		}, client.NewFileTokenStore(*tokenFile)),
		log: log,
		in:  bufio.NewReader(std.in),
		out: std.out,
		err: std.err,
	}

	if err := cmd.run(ctx, a, rest); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		a.report(err)
		return 1
	}
	return 0
}

func usage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: sitectl [flags] <command> [args]")
	fmt.Fprintln(w, "\nflags:")
	fmt.Fprint(w, flags.FlagUsages())

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, admin := range []bool{false, true} {
		if admin {
			fmt.Fprintln(w, "\nadmin commands:")
		} else {
			fmt.Fprintln(w, "\npublic commands:")
		}
		for _, name := range names {
			if commands[name].admin == admin {
				fmt.Fprintf(w, "  %-14s %s\n", name, commands[name].usage)
			}
		}
	}
}

// notifier prints site notifications
func (a *app) notifier() site.Notifier {
	return site.NotifierFunc(func(n site.Notification) {
		if n.Level == site.LevelError {
			fmt.Fprintf(a.err, "Fehler: %s\n", n.Message)
			return
		}
		fmt.Fprintln(a.out, n.Message)
	})
}

// confirmer asks on stdin unless yes is set
func (a *app) confirmer(yes bool) site.Confirmer {
	return site.ConfirmFunc(func(_ context.Context, prompt string) bool {
		if yes {
			return true
		}
		fmt.Fprintf(a.out, "%s [j/N] ", prompt)
		answer, _ := a.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "j", "ja", "y", "yes":
			return true
		}
		return false
	})
}

// report prints the details of err that the notification did not carry
func (a *app) report(err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		fmt.Fprintf(a.err, "sitectl: %v\n", err)
		return
	}
	fmt.Fprintf(a.err, "sitectl: %s\n", appErr.Message)
	fields := make([]string, 0, len(appErr.Fields))
	for field := range appErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(a.err, "  %s: %s\n", field, appErr.Fields[field])
	}
}
