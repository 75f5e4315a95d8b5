package services

import (
	"context"
	"net/http"
	"sync"

	goahttp "goa.design/goa/v3/http"
	"goa.design/goa/v3/http/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stadtwache/internal/config"
	"stadtwache/internal/util"
)

// Deps are the collaborators of the HTTP handlers
type Deps struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Tokens   *util.TokenIssuer
	Cache    *Cache
	Denylist *Denylist
	Notifier *Notifier
	Limiter  *util.RateLimiter
	Uploads  config.UploadConfig
	Version  string
	// TrustedProxies are peer IPs whose X-Forwarded-For header is honoured
	TrustedProxies []string
}

// Server serves the public and admin REST API
type Server struct {
	db       *gorm.DB
	log      *zap.Logger
	tokens   *util.TokenIssuer
	cache    *Cache
	denylist *Denylist
	notifier *Notifier
	limiter  *util.RateLimiter
	uploads  config.UploadConfig
	version  string
	proxies  []string
	tracer   trace.Tracer
	mux      goahttp.Muxer

	bg sync.WaitGroup
}

// NewServer creates a Server
func NewServer(d Deps) *Server {
	return &Server{
		db:       d.DB,
		log:      d.Log.Named("api"),
		tokens:   d.Tokens,
		cache:    d.Cache,
		denylist: d.Denylist,
		notifier: d.Notifier,
		limiter:  d.Limiter,
		uploads:  d.Uploads,
		version:  d.Version,
		proxies:  d.TrustedProxies,
		tracer:   otel.Tracer("stadtwache/services"),
	}
}

type route struct {
	method  string
	pattern string
	handler http.HandlerFunc
	admin   bool
}

func (s *Server) routes() []route {
	return []route{
		{"GET", "/api/", s.root, false},
		{"GET", "/health", s.health, false},

		{"POST", "/api/admin/login", s.login, false},
		{"GET", "/api/admin/me", s.me, true},
		{"POST", "/api/admin/logout", s.logout, true},

		{"GET", "/api/news", s.listPublicNews, false},
		{"GET", "/api/news/latest", s.latestNews, false},
		{"GET", "/api/admin/news", s.listAdminNews, true},
		{"POST", "/api/admin/news", s.createNews, true},
		{"PUT", "/api/admin/news/{id}", s.updateNews, true},
		{"DELETE", "/api/admin/news/{id}", s.deleteNews, true},

		{"POST", "/api/applications", s.createApplication, false},
		{"GET", "/api/admin/applications", s.listApplications, true},
		{"PUT", "/api/admin/applications/{id}/respond", s.respondApplication, true},

		{"POST", "/api/feedback", s.createFeedback, false},
		{"GET", "/api/admin/feedback", s.listFeedback, true},
		{"PUT", "/api/admin/feedback/{id}/respond", s.respondFeedback, true},

		{"GET", "/api/reports/types", s.reportTypes, false},
		{"POST", "/api/reports", s.createReport, false},
		{"GET", "/api/admin/reports", s.listReports, true},
		{"PUT", "/api/admin/reports/{id}/status", s.updateReportStatus, true},
		{"PUT", "/api/admin/reports/{id}", s.updateReportStatus, true},

		{"GET", "/api/homepage", s.getHomepage, false},
		{"GET", "/api/admin/homepage", s.getHomepage, true},
		{"PUT", "/api/admin/homepage", s.updateHomepage, true},
		{"GET", "/api/about", s.getAbout, false},
		{"GET", "/api/admin/about", s.getAbout, true},
		{"PUT", "/api/admin/about", s.updateAbout, true},
		{"GET", "/api/chat-widget", s.getChatWidget, false},
		{"GET", "/api/admin/chat-widget", s.getChatWidget, true},
		{"PUT", "/api/admin/chat-widget", s.updateChatWidget, true},

		{"GET", "/api/chat/buttons", s.listPublicButtons, false},
		{"GET", "/api/admin/chat/buttons", s.listAdminButtons, true},
		{"POST", "/api/admin/chat/buttons", s.createButton, true},
		{"PUT", "/api/admin/chat/buttons/{id}", s.updateButton, true},
		{"DELETE", "/api/admin/chat/buttons/{id}", s.deleteButton, true},

		{"POST", "/api/chat/messages", s.createChatMessage, false},
		{"GET", "/api/admin/chat/messages", s.listChatMessages, true},
		{"PUT", "/api/admin/chat/messages/{id}/respond", s.respondChatMessage, true},

		{"GET", "/api/uploads/{filename}", s.serveUpload, false},
	}
}

// Mount registers every route on mux
func (s *Server) Mount(mux goahttp.Muxer) {
	s.mux = mux
	for _, rt := range s.routes() {
		h := rt.handler
		if rt.admin {
			h = s.requireAdmin(h)
		}
		mux.Handle(rt.method, rt.pattern, s.traced(rt.pattern, h))
	}
}

// Handler returns a goa muxer with every route mounted and the request id
// middlewares applied.
func (s *Server) Handler() http.Handler {
	mux := goahttp.NewMuxer()
	s.Mount(mux)

	var handler http.Handler = mux
	handler = middleware.PopulateRequestContext()(handler)
	handler = middleware.RequestID()(handler)
	return handler
}

func (s *Server) pathVar(r *http.Request, name string) string {
	return s.mux.Vars(r)[name]
}

func (s *Server) traced(pattern string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), r.Method+" "+pattern)
		defer span.End()
		next(w, r.WithContext(ctx))
	}
}

// background runs fn detached from the request; Wait blocks until all such work is done.
func (s *Server) background(fn func(ctx context.Context)) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until every background notification has finished
func (s *Server) Wait() {
	s.bg.Wait()
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Stadtwache API", "version": s.version})
}
