package site

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"stadtwache/internal/client"
)

// Section is a public area of the site
type Section string

const (
	SectionHome     Section = "home"
	SectionNews     Section = "news"
	SectionAbout    Section = "about"
	SectionReport   Section = "report"
	SectionApply    Section = "apply"
	SectionFeedback Section = "feedback"
	SectionContact  Section = "contact"
)

// Sections lists the public sections in menu order
var Sections = []Section{SectionHome, SectionNews, SectionAbout, SectionReport, SectionApply, SectionFeedback, SectionContact}

// AdminView is what the admin area currently shows
type AdminView string

const (
	ViewVerifying AdminView = "verifying"
	ViewLogin     AdminView = "login"
	ViewDashboard AdminView = "dashboard"
)

// Route is the active top-level view. It is either a PublicRoute or an AdminRoute.
type Route interface {
	route()
}

// PublicRoute shows a public section
type PublicRoute struct {
	Section Section
}

// AdminRoute shows the admin area
type AdminRoute struct {
	View AdminView
}

func (PublicRoute) route() {}
func (AdminRoute) route()  {}

// Path returns the location a route is reachable at. Only the admin/public
// split is addressable.
func Path(r Route) string {
	switch r := r.(type) {
	case PublicRoute:
		return "/"
	case AdminRoute:
		return "/admin"
	default:
		panic(fmt.Sprintf("site: unknown route %T", r))
	}
}

// Describe renders a route for logs and the terminal front-end
func Describe(r Route) string {
	switch r := r.(type) {
	case PublicRoute:
		return "public(" + string(r.Section) + ")"
	case AdminRoute:
		return "admin(" + string(r.View) + ")"
	default:
		panic(fmt.Sprintf("site: unknown route %T", r))
	}
}

func isAdminPath(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	path := strings.TrimRight(u.Path, "/")
	return path == "/admin" || strings.HasPrefix(path, "/admin/")
}

func adminView(state client.SessionState) AdminView {
	switch state {
	case client.Verifying:
		return ViewVerifying
	case client.Authenticated:
		return ViewDashboard
	default:
		return ViewLogin
	}
}

// Router holds the active route and follows the admin session
type Router struct {
	session     Session
	unsubscribe func()

	mu     sync.Mutex
	route  Route
	subs   map[int]func(Route)
	nextID int
}

// NewRouter starts at the admin gate when location is an admin path and at
// the public home otherwise. Anything else in the location is ignored.
func NewRouter(location string, session Session) *Router {
	r := &Router{session: session, route: PublicRoute{Section: SectionHome}, subs: make(map[int]func(Route))}
	if isAdminPath(location) {
		r.route = AdminRoute{View: adminView(session.State())}
	}
	r.unsubscribe = session.Subscribe(r.sessionChanged)
	return r
}

// Route returns the active route
func (r *Router) Route() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.route
}

// Navigate switches to a public section
func (r *Router) Navigate(section Section) error {
	for _, s := range Sections {
		if s == section {
			r.set(PublicRoute{Section: section})
			return nil
		}
	}
	return fmt.Errorf("unknown section %q", section)
}

// EnterAdmin switches to the admin area
func (r *Router) EnterAdmin() {
	r.set(AdminRoute{View: adminView(r.session.State())})
}

// Logout ends the admin session and returns to the public home
func (r *Router) Logout(ctx context.Context) error {
	r.set(PublicRoute{Section: SectionHome})
	return r.session.Logout(ctx)
}

// Subscribe registers fn for route changes and returns a function removing it
func (r *Router) Subscribe(fn func(Route)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// Close stops following the session
func (r *Router) Close() {
	r.unsubscribe()
}

func (r *Router) sessionChanged(state client.SessionState) {
	r.mu.Lock()
	_, inAdmin := r.route.(AdminRoute)
	r.mu.Unlock()
	if inAdmin {
		r.set(AdminRoute{View: adminView(state)})
	}
}

func (r *Router) set(route Route) {
	r.mu.Lock()
	if r.route == route {
		r.mu.Unlock()
		return
	}
	r.route = route
	subs := make([]func(Route), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	for _, fn := range subs {
		fn(route)
	}
}
