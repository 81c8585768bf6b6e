// Package app holds the application controller: the per-session state
// machine that loads the catalog, tracks the selected laptop and submits
// requests through the data client.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"laptop-request-catalog/internal/datastore"
	"laptop-request-catalog/internal/form"
	"laptop-request-catalog/internal/models"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Phase is the controller's position in the main flow.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseLoaded
	PhaseSelected
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseSelected:
		return "laptop-selected"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// User-visible notification messages.
const (
	MsgLoadFailed   = "Failed to load laptop catalog"
	MsgSubmitted    = "Request submitted successfully!"
	MsgSubmitFailed = "Failed to submit request. Please try again."
)

var (
	ErrNotLoaded       = errors.New("catalog is not loaded")
	ErrUnknownLaptop   = errors.New("laptop is not in the catalog")
	ErrUnavailable     = errors.New("laptop is not available")
	ErrNothingSelected = errors.New("no laptop selected")
	ErrSubmitInFlight  = errors.New("a request is already being submitted")
)

// Observer is told about the outcome of outward calls.
type Observer interface {
	CatalogFetched(count int, err error)
	RequestSubmitted(err error)
}

type noopObserver struct{}

func (noopObserver) CatalogFetched(int, error) {}
func (noopObserver) RequestSubmitted(error)    {}

// Options configures a Controller.
type Options struct {
	Clock           clockwork.Clock
	NotificationTTL time.Duration
	Observer        Observer
	Logger          zerolog.Logger
}

// Controller owns one session's catalog, selection and notification. All
// transitions are serialized; outward calls run without holding the lock.
type Controller struct {
	client   datastore.Client
	notifier *Notifier
	observer Observer
	logger   zerolog.Logger

	mu      sync.Mutex
	phase   Phase
	laptops []models.Laptop
	form    *form.Form
}

// NewController creates a controller in the loading phase.
func NewController(client datastore.Client, opts Options) *Controller {
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	return &Controller{
		client:   client,
		notifier: NewNotifier(opts.Clock, opts.NotificationTTL),
		observer: opts.Observer,
		logger:   opts.Logger,
		phase:    PhaseLoading,
	}
}

// Mount loads the catalog. It is called on every page load: any selection
// is dropped and the list is fetched again. A failed fetch still leaves
// the loading phase, with an empty catalog and an error notification.
func (c *Controller) Mount(ctx context.Context) {
	c.mu.Lock()
	if c.phase == PhaseSubmitting {
		// The in-flight submit settles the state; show what we have.
		c.mu.Unlock()
		return
	}
	c.phase = PhaseLoading
	c.form = nil
	c.mu.Unlock()

	laptops, err := c.client.ListLaptops(ctx)
	c.observer.CatalogFetched(len(laptops), err)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error fetching laptops")
		laptops = []models.Laptop{}
		c.notifier.Show(models.NotificationError, MsgLoadFailed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.laptops = laptops
	if c.phase == PhaseLoading {
		c.phase = PhaseLoaded
	}
}

// Select opens the request form for the laptop with id, replacing any
// current selection.
func (c *Controller) Select(id string) (models.Laptop, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case PhaseLoading:
		return models.Laptop{}, ErrNotLoaded
	case PhaseSubmitting:
		return models.Laptop{}, ErrSubmitInFlight
	}

	for _, l := range c.laptops {
		if l.ID != id {
			continue
		}
		if !l.Available {
			return l, ErrUnavailable
		}
		c.form = form.New(l)
		c.phase = PhaseSelected
		return l, nil
	}
	return models.Laptop{}, ErrUnknownLaptop
}

// Close dismisses the request form. Closing is refused while a submit is
// in flight.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case PhaseSubmitting:
		return ErrSubmitInFlight
	case PhaseSelected:
		c.form = nil
		c.phase = PhaseLoaded
	}
	return nil
}

// Submit validates in against the open form. Blank fields keep the form
// open and return form.ErrInvalid without calling the data client.
// Otherwise exactly one request is created; whatever the outcome, the
// form is closed and a notification is shown. The create call is detached
// from ctx cancellation so a departing caller does not abort it.
func (c *Controller) Submit(ctx context.Context, in form.Input) error {
	c.mu.Lock()
	switch {
	case c.phase == PhaseSubmitting:
		c.mu.Unlock()
		return ErrSubmitInFlight
	case c.phase != PhaseSelected || c.form == nil:
		c.mu.Unlock()
		return ErrNothingSelected
	}

	f := c.form
	req, err := f.Submit(in)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.phase = PhaseSubmitting
	c.mu.Unlock()

	err = c.client.CreateRequest(context.WithoutCancel(ctx), req)
	c.observer.RequestSubmitted(err)

	c.mu.Lock()
	f.Done()
	if c.form == f {
		c.form = nil
	}
	c.phase = PhaseLoaded
	c.mu.Unlock()

	if err != nil {
		c.logger.Error().Err(err).Str("laptop_model_id", req.LaptopModelID).Msg("Error submitting request")
		c.notifier.Show(models.NotificationError, MsgSubmitFailed)
		return err
	}
	c.logger.Info().Str("laptop_model_id", req.LaptopModelID).Msg("Request submitted")
	c.notifier.Show(models.NotificationSuccess, MsgSubmitted)
	return nil
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	Phase        Phase
	Laptops      []models.Laptop
	Selected     *models.Laptop
	Form         *form.Form
	Notification *models.Notification
	NotifyIn     time.Duration
}

// Loading reports whether the catalog fetch is still outstanding.
func (s Snapshot) Loading() bool { return s.Phase == PhaseLoading }

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	s := Snapshot{Phase: c.phase}
	s.Laptops = make([]models.Laptop, len(c.laptops))
	copy(s.Laptops, c.laptops)
	if c.form != nil {
		l := c.form.Laptop()
		fc := *c.form
		s.Selected = &l
		s.Form = &fc
	}
	c.mu.Unlock()

	if n, remaining, ok := c.notifier.Current(); ok {
		s.Notification = &n
		s.NotifyIn = remaining
	}
	return s
}

// Notifier exposes the notification side channel.
func (c *Controller) Notifier() *Notifier { return c.notifier }

// Shutdown stops the pending notification timer.
func (c *Controller) Shutdown() {
	c.notifier.Dismiss()
}
