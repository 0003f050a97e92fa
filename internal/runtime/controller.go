package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/citywalk/internal/logging"
	"github.com/aretw0/citywalk/pkg/adapters/maps"
	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/ports"
)

// watchBuffer is the per-watcher channel capacity.
const watchBuffer = 16

// Controller owns the view state machine and the data collected along the flow.
// It is safe for concurrent use; external calls run outside the lock while the
// loading flag rejects any other trigger.
type Controller struct {
	mu sync.Mutex

	sessionID string
	state     domain.AppState
	loading   bool
	location  *domain.Coordinates
	prefs     domain.UserPreferences
	route     *domain.WalkRoute
	walk      *Walkthrough
	alert     *domain.Alert
	watchers  map[chan *domain.Snapshot]struct{}

	locator     ports.Locator
	generator   ports.RouteGenerator
	launcher    ports.MapLauncher
	mapsBaseURL string
	allowCustom bool
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger configures a logger for the controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks. Multiple calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithMapLauncher sets the application used by OpenMap. Without one, OpenMap only returns the link.
func WithMapLauncher(l ports.MapLauncher) Option {
	return func(c *Controller) {
		c.launcher = l
	}
}

// WithMapsBaseURL overrides the directions endpoint used for deep links.
func WithMapsBaseURL(base string) Option {
	return func(c *Controller) {
		c.mapsBaseURL = base
	}
}

// WithAllowCustomPreferences accepts labels outside the theme and duration catalogs.
func WithAllowCustomPreferences(allow bool) Option {
	return func(c *Controller) {
		c.allowCustom = allow
	}
}

// WithSessionID fixes the identifier reported on snapshots.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.sessionID = id
		}
	}
}

// WithInitialPreferences overrides the pre-selected preferences.
func WithInitialPreferences(p domain.UserPreferences) Option {
	return func(c *Controller) {
		c.prefs = p
	}
}

// WithClock overrides the time source of lifecycle events.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

var _ ports.Controller = (*Controller)(nil)

// NewController creates a controller in the Welcome state.
func NewController(locator ports.Locator, generator ports.RouteGenerator, opts ...Option) *Controller {
	c := &Controller{
		sessionID:   uuid.NewString(),
		state:       domain.StateWelcome,
		prefs:       domain.DefaultPreferences(),
		watchers:    make(map[chan *domain.Snapshot]struct{}),
		locator:     locator,
		generator:   generator,
		mapsBaseURL: maps.DefaultBaseURL,
		logger:      logging.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a deep copy of the current view model.
func (c *Controller) Snapshot() *domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Start acquires the location with the configured locator.
func (c *Controller) Start(ctx context.Context) (*domain.Snapshot, error) {
	return c.StartWith(ctx, c.locator)
}

// StartWith acquires the location with the given locator and enters Preferences on success.
// On failure the controller stays in Welcome with a blocking alert.
func (c *Controller) StartWith(ctx context.Context, locator ports.Locator) (*domain.Snapshot, error) {
	c.mu.Lock()
	if err := c.beginLocked(domain.EventStart); err != nil {
		return c.rejectLocked(err)
	}
	c.mu.Unlock()

	start := c.now()
	var (
		loc domain.Coordinates
		err error
	)
	if locator == nil {
		err = domain.ErrLocationUnsupported
	} else {
		loc, err = locator.Locate(ctx)
		if err == nil {
			err = loc.Validate()
		}
	}

	c.mu.Lock()
	c.loading = false
	var moved *domain.TransitionEvent
	if err != nil {
		msg := domain.MsgLocationDenied
		if errors.Is(err, domain.ErrLocationUnsupported) {
			msg = domain.MsgLocationUnsupported
		}
		err = fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
		c.alert = &domain.Alert{Kind: domain.AlertBlocking, Message: msg}
		c.logger.Warn("location unavailable", "err", err)
	} else {
		c.location = &loc
		moved = c.moveLocked(domain.EventStart)
		c.logger.Debug("location acquired", "location", loc.String())
	}
	snap := c.commitLocked()
	c.mu.Unlock()

	ev := &domain.LocateEvent{EventBase: c.base(), Elapsed: c.now().Sub(start), Err: err}
	if err == nil {
		ev.Location = &loc
	}
	c.emitLocate(ctx, ev)
	c.emitTransition(ctx, moved)
	return snap, err
}

// SetPreferences edits the selection while in Preferences.
func (c *Controller) SetPreferences(prefs domain.UserPreferences) (*domain.Snapshot, error) {
	c.mu.Lock()
	if c.loading {
		return c.rejectLocked(domain.ErrBusy)
	}
	if c.state != domain.StatePreferences {
		return c.rejectLocked(fmt.Errorf("%w: preferences are only editable in %s", domain.ErrInvalidTransition, domain.StatePreferences))
	}
	if err := prefs.Validate(c.allowCustom); err != nil {
		return c.rejectLocked(err)
	}
	c.prefs = prefs
	snap := c.commitLocked()
	c.mu.Unlock()
	return snap, nil
}

// Submit stores the preferences and generates a route. On success the controller enters
// Preview; on failure it stays in Preferences with a dismissible banner and the
// preferences kept for resubmission.
func (c *Controller) Submit(ctx context.Context, prefs domain.UserPreferences) (*domain.Snapshot, error) {
	c.mu.Lock()
	if c.loading {
		return c.rejectLocked(domain.ErrBusy)
	}
	if _, err := domain.Transition(c.state, domain.EventSubmit); err != nil {
		return c.rejectLocked(err)
	}
	if err := prefs.Validate(c.allowCustom); err != nil {
		return c.rejectLocked(err)
	}
	if c.location == nil {
		return c.rejectLocked(domain.ErrNoLocation)
	}
	if c.generator == nil {
		return c.rejectLocked(fmt.Errorf("%w: no route generator configured", domain.ErrGenerationFailed))
	}
	c.prefs = prefs
	c.loading = true
	c.alert = nil
	loc := *c.location
	c.commitLocked()
	c.mu.Unlock()

	start := c.now()
	route, err := c.generator.Generate(ctx, loc, prefs)
	if err == nil {
		err = route.Validate()
	}
	if err != nil && !errors.Is(err, domain.ErrGenerationFailed) {
		err = fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	c.mu.Lock()
	c.loading = false
	var moved *domain.TransitionEvent
	stops := 0
	if err != nil {
		c.alert = &domain.Alert{Kind: domain.AlertBanner, Message: domain.MsgGenerationFailed}
		c.logger.Error("route generation failed", "err", err, "theme", prefs.Theme, "duration", prefs.Duration)
	} else {
		c.route = route.Clone()
		c.walk = nil
		stops = len(route.Stops)
		moved = c.moveLocked(domain.EventSubmit)
		c.logger.Info("route generated", "title", route.Title, "stops", stops)
	}
	snap := c.commitLocked()
	c.mu.Unlock()

	c.emitGenerate(ctx, &domain.GenerateEvent{
		EventBase:   c.base(),
		Preferences: prefs,
		Stops:       stops,
		Elapsed:     c.now().Sub(start),
		Err:         err,
	})
	c.emitTransition(ctx, moved)
	return snap, err
}

// StartNavigation enters the walkthrough at the first stop.
func (c *Controller) StartNavigation(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	if err := c.checkLocked(domain.EventStartNavigation); err != nil {
		return c.rejectLocked(err)
	}
	if c.route == nil {
		return c.rejectLocked(domain.ErrNoRoute)
	}
	c.walk = NewWalkthrough(c.route.Stops)
	moved := c.moveLocked(domain.EventStartNavigation)
	snap := c.commitLocked()
	c.mu.Unlock()

	c.emitTransition(ctx, moved)
	return snap, nil
}

// Back returns from Preview to Preferences, keeping the submitted preferences.
func (c *Controller) Back(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	if err := c.checkLocked(domain.EventBack); err != nil {
		return c.rejectLocked(err)
	}
	moved := c.moveLocked(domain.EventBack)
	snap := c.commitLocked()
	c.mu.Unlock()

	c.emitTransition(ctx, moved)
	return snap, nil
}

// Advance moves the walkthrough cursor. Past the last stop it is a no-op.
func (c *Controller) Advance(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkNavigatingLocked(); err != nil {
		return c.snapshotLocked(), err
	}
	if c.walk.Advance() {
		k, n := c.walk.Position()
		c.logger.Debug("walkthrough advanced", "position", k, "total", n)
		return c.commitLocked(), nil
	}
	return c.snapshotLocked(), nil
}

// OpenMap hands a directions link for the current stop to the map launcher and returns it.
// The cursor is untouched; repeated calls produce the same link.
func (c *Controller) OpenMap(ctx context.Context) (string, error) {
	c.mu.Lock()
	if err := c.checkNavigatingLocked(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	stop, ok := c.walk.Current()
	if !ok {
		c.mu.Unlock()
		return "", domain.ErrWalkFinished
	}
	url := maps.Link(c.mapsBaseURL, stop.Coordinates)
	launcher := c.launcher
	c.mu.Unlock()

	var err error
	if launcher != nil {
		if err = launcher.Launch(ctx, url); err != nil {
			err = fmt.Errorf("failed to launch map: %w", err)
			c.logger.Warn("map launch failed", "err", err, "stop", stop.ID)
		}
	}
	c.emitMapOpen(ctx, &domain.MapEvent{EventBase: c.base(), StopID: stop.ID, URL: url, Err: err})
	return url, err
}

// End discards the route and returns to Welcome. The location is kept.
func (c *Controller) End(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	if err := c.checkLocked(domain.EventEnd); err != nil {
		return c.rejectLocked(err)
	}
	c.route = nil
	c.walk = nil
	moved := c.moveLocked(domain.EventEnd)
	snap := c.commitLocked()
	c.mu.Unlock()

	c.emitTransition(ctx, moved)
	return snap, nil
}

// DismissError clears the alert without touching the active state. It is accepted while loading.
func (c *Controller) DismissError() *domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.alert == nil {
		return c.snapshotLocked()
	}
	c.alert = nil
	return c.commitLocked()
}

// Watch streams a snapshot after every change until ctx is done.
func (c *Controller) Watch(ctx context.Context) <-chan *domain.Snapshot {
	ch := make(chan *domain.Snapshot, watchBuffer)

	c.mu.Lock()
	c.watchers[ch] = struct{}{}
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		delete(c.watchers, ch)
		close(ch)
		c.mu.Unlock()
	}()
	return ch
}

// -- internals (all *Locked helpers require c.mu) --

// beginLocked accepts an asynchronous trigger: it raises the loading flag and clears the alert.
func (c *Controller) beginLocked(ev domain.Event) error {
	if err := c.checkLocked(ev); err != nil {
		return err
	}
	c.loading = true
	c.alert = nil
	c.commitLocked()
	return nil
}

func (c *Controller) checkLocked(ev domain.Event) error {
	if c.loading {
		return domain.ErrBusy
	}
	_, err := domain.Transition(c.state, ev)
	return err
}

func (c *Controller) checkNavigatingLocked() error {
	if c.loading {
		return domain.ErrBusy
	}
	if c.state != domain.StateNavigation || c.walk == nil {
		return fmt.Errorf("%w: walkthrough actions require %s, current state is %s",
			domain.ErrInvalidTransition, domain.StateNavigation, c.state)
	}
	return nil
}

// rejectLocked releases the lock and returns the unchanged snapshot with err.
func (c *Controller) rejectLocked(err error) (*domain.Snapshot, error) {
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.logger.Debug("trigger rejected", "state", snap.State, "err", err)
	return snap, err
}

func (c *Controller) moveLocked(ev domain.Event) *domain.TransitionEvent {
	to, err := domain.Transition(c.state, ev)
	if err != nil {
		return nil
	}
	from := c.state
	c.state = to
	c.logger.Info("state changed", "from", from, "to", to, "trigger", ev)
	return &domain.TransitionEvent{EventBase: c.base(), From: from, To: to, Trigger: ev}
}

// commitLocked publishes the current snapshot to watchers and returns it.
func (c *Controller) commitLocked() *domain.Snapshot {
	snap := c.snapshotLocked()
	for ch := range c.watchers {
		select {
		case ch <- snap.Clone():
		default:
			c.logger.Warn("watcher buffer full, dropping snapshot", "session_id", c.sessionID)
		}
	}
	return snap
}

func (c *Controller) snapshotLocked() *domain.Snapshot {
	snap := &domain.Snapshot{
		SessionID:   c.sessionID,
		State:       c.state,
		Loading:     c.loading,
		Preferences: c.prefs,
		Route:       c.route.Clone(),
		Actions:     []domain.Event{},
	}
	if c.location != nil {
		loc := *c.location
		snap.Location = &loc
	}
	if c.alert != nil {
		a := *c.alert
		snap.Error = &a
	}
	if c.state == domain.StateNavigation && c.walk != nil {
		p := c.walk.Progress()
		snap.Walk = &p
	}
	if !c.loading {
		snap.Actions = domain.Accepts(c.state)
	}
	return snap
}
