package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stadtwache/internal/config"
	"stadtwache/internal/database"
	"stadtwache/internal/domain"
	"stadtwache/internal/services"
	"stadtwache/internal/util"
)

type harness struct {
	t   *testing.T
	cfg *config.Config
}

type result struct {
	code   int
	stdout string
	stderr string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		URL: "sqlite:///file:sitectl_" + t.Name() + "_" + time.Now().Format("150405.000000000") + "?mode=memory&cache=shared",
	}, zap.NewNop())
	require.NoError(t, err)

	hash, err := util.HashPassword("admin123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.User{
		Username:       "admin",
		Email:          "admin@stadtwache.de",
		HashedPassword: hash,
		IsActive:       true,
	}).Error)

	mr := miniredis.RunT(t)
	srv := services.NewServer(services.Deps{
		DB:       db,
		Log:      zap.NewNop(),
		Tokens:   util.NewTokenIssuer("sitectl-test-secret-with-enough-length", time.Hour),
		Denylist: services.NewDenylist(redis.NewClient(&redis.Options{Addr: mr.Addr()})),
		Uploads:  config.UploadConfig{Dir: t.TempDir(), MaxSizeBytes: 1 << 20},
		Version:  "test",
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &harness{t: t, cfg: &config.Config{Client: config.ClientConfig{
		BackendURL: ts.URL,
		TokenFile:  filepath.Join(t.TempDir(), "token.json"),
	}}}
}

func (h *harness) run(stdin string, args ...string) result {
	var out, errOut bytes.Buffer
	code := run(h.t.Context(), h.cfg, args, stdio{in: strings.NewReader(stdin), out: &out, err: &errOut})
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func (h *harness) login() {
	res := h.run("admin123\n", "login")
	require.Equal(h.t, 0, res.code, res.stderr)
}

func TestUsage(t *testing.T) {
	h := newHarness(t)

	res := h.run("")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "public commands:")
	assert.Contains(t, res.stderr, "respond")

	res = h.run("", "frobnicate")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, `unknown command "frobnicate"`)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	res := h.run("", "login", "--password", "falsch")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Fehler: Anmeldung fehlgeschlagen")
	assert.Contains(t, res.stderr, "invalid credentials")

	res = h.run("", "whoami")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "not signed in")

	h.login()
	res = h.run("", "whoami")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "admin <admin@stadtwache.de>\n", res.stdout)

	res = h.run("", "logout")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Abgemeldet")

	res = h.run("", "whoami")
	assert.Equal(t, 1, res.code)
}

func TestNewsLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login()

	res := h.run("", "news-create", "--title", "Straßensperrung", "--content", "Die Hauptstraße ist gesperrt.", "--priority", "high")
	require.Equal(t, 0, res.code, res.stderr)

	res = h.run("", "news")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Straßensperrung (high)")

	res = h.run("", "list", "news")
	require.Equal(t, 0, res.code, res.stderr)
	id := regexp.MustCompile(`(?m)^([0-9a-f-]{36})\s`).FindStringSubmatch(res.stdout)
	require.Len(t, id, 2, res.stdout)

	res = h.run("n\n", "news-delete", id[1])
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Nachricht wirklich löschen?")
	assert.Contains(t, h.run("", "news").stdout, "Straßensperrung")

	res = h.run("", "news-delete", "--yes", id[1])
	require.Equal(t, 0, res.code, res.stderr)
	assert.NotContains(t, h.run("", "news").stdout, "Straßensperrung")
}

func TestFeedback_ValidationIsReportedPerField(t *testing.T) {
	h := newHarness(t)

	res := h.run("", "feedback", "--name", "Jonas", "--email", "kaputt", "--subject", "Lob", "--message", "Danke!")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Fehler: Fehler beim Einreichen des Feedbacks")
	assert.Contains(t, res.stderr, "  email: ")

	res = h.run("", "feedback", "--name", "Jonas", "--email", "jonas@example.de", "--subject", "Lob", "--message", "Danke!")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Feedback erfolgreich eingereicht!")
}

func TestReport_RespondWithLegacyStatus(t *testing.T) {
	h := newHarness(t)

	res := h.run("", "report",
		"--type", "diebstahl",
		"--description", "Fahrrad vom Bahnhof gestohlen",
		"--location", "Bahnhofstraße 1",
		"--date", "2026-10-18",
		"--name", "Mira",
		"--email", "mira@example.de")
	require.Equal(t, 0, res.code, res.stderr)
	id := strings.TrimSpace(strings.TrimPrefix(strings.Split(res.stdout, "\n")[1], "Aktenzeichen: "))
	require.NotEmpty(t, id, res.stdout)

	h.login()
	res = h.run("", "respond", "reports", id, "under_review", "Wird bearbeitet")
	require.Equal(t, 0, res.code, res.stderr)

	res = h.run("", "list", "reports")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, domain.ReportInProgress)
}

func TestPublicSections(t *testing.T) {
	h := newHarness(t)

	res := h.run("", "types")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "notfall:")

	res = h.run("", "contact")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Notruf:")

	res = h.run("", "message", "--name", "Lena", "--email", "lena@example.de", "--text", "Wann ist die Wache geöffnet?")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Nachricht gesendet!")
}

func TestWidgetOffBlocksMessages(t *testing.T) {
	h := newHarness(t)
	h.login()

	res := h.run("", "widget", "off")
	require.Equal(t, 0, res.code, res.stderr)

	res = h.run("", "message", "--name", "Lena", "--email", "lena@example.de", "--text", "Hallo")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "chat widget disabled")
}
