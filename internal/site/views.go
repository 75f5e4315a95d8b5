package site

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"stadtwache/internal/client"
	"stadtwache/internal/domain"
)

// LoadState tracks a view's own fetch
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Ready
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// View fetches its data on Mount. Results that arrive after Unmount, or
// after a newer Mount, are discarded.
type View[T any] struct {
	name   string
	load   func(context.Context) (T, error)
	notify Notifier
	log    *zap.Logger

	mu         sync.Mutex
	generation int
	mounted    bool
	state      LoadState
	data       T
	err        error
}

func newView[T any](name string, load func(context.Context) (T, error), notify Notifier, log *zap.Logger) *View[T] {
	return &View[T]{name: name, load: load, notify: notify, log: log.Named(name)}
}

// Mount starts the fetch and returns a channel closed once its result has
// been applied or discarded.
func (v *View[T]) Mount(ctx context.Context) <-chan struct{} {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.mounted = true
	v.state = Loading
	v.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		data, err := v.load(ctx)

		v.mu.Lock()
		if !v.mounted || v.generation != gen {
			v.mu.Unlock()
			v.log.Debug("discarding stale result")
			return
		}
		if err != nil {
			v.state, v.err = Failed, err
		} else {
			v.state, v.data, v.err = Ready, data, nil
		}
		v.mu.Unlock()

		if err != nil {
			failure(v.log, v.notify, "Fehler beim Laden: "+v.name, err)
		}
	}()
	return done
}

// Unmount detaches the view; a fetch still in flight is ignored when it returns
func (v *View[T]) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mounted = false
	v.generation++
	v.state = Idle
}

// Snapshot returns the view's current state, data and error
func (v *View[T]) Snapshot() (LoadState, T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state, v.data, v.err
}

// HomeData is what the home section shows
type HomeData struct {
	Config domain.HomepageConfig
	Latest []domain.NewsItem
}

// Contact is the contact section, taken from the homepage configuration
type Contact struct {
	EmergencyNumber string
	PhoneNumber     string
	Email           string
	Address         string
	OpeningHours    string
}

// Views are the public sections that display data
type Views struct {
	Home        *View[HomeData]
	News        *View[[]domain.NewsItem]
	About       *View[*domain.AboutConfig]
	Contact     *View[Contact]
	ReportTypes *View[[]domain.IncidentType]
}

// NewViews wires each public view to its own fetch
func NewViews(api *client.Client, notify Notifier, log *zap.Logger) *Views {
	log = log.Named("views")
	return &Views{
		Home: newView("home", func(ctx context.Context) (HomeData, error) {
			cfg, err := api.Homepage.Get(ctx)
			if err != nil {
				return HomeData{}, err
			}
			data := HomeData{Config: *cfg}
			if cfg.ShowLatestNews {
				if data.Latest, err = api.News.Latest(ctx); err != nil {
					return HomeData{}, err
				}
			}
			return data, nil
		}, notify, log),
		News:  newView("news", api.News.ListPublic, notify, log),
		About: newView("about", api.About.Get, notify, log),
		Contact: newView("contact", func(ctx context.Context) (Contact, error) {
			cfg, err := api.Homepage.Get(ctx)
			if err != nil {
				return Contact{}, err
			}
			return Contact{
				EmergencyNumber: cfg.EmergencyNumber,
				PhoneNumber:     cfg.PhoneNumber,
				Email:           cfg.Email,
				Address:         cfg.Address,
				OpeningHours:    cfg.OpeningHours,
			}, nil
		}, notify, log),
		ReportTypes: newView("report", api.Reports.Types, notify, log),
	}
}
