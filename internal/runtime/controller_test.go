package runtime_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/citywalk/internal/runtime"
	"github.com/aretw0/citywalk/internal/testutils"
	"github.com/aretw0/citywalk/pkg/adapters/maps"
	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/ports"
)

func okGenerator() testutils.GeneratorFunc {
	return func(ctx context.Context, loc domain.Coordinates, prefs domain.UserPreferences) (*domain.WalkRoute, error) {
		return testutils.SampleRoute(), nil
	}
}

// navigating drives a fresh controller into the Navigation state.
func navigating(t *testing.T, opts ...runtime.Option) *runtime.Controller {
	t.Helper()
	ctx := context.Background()
	c := runtime.NewController(testutils.StaticLocator(testutils.Shanghai, nil), okGenerator(), opts...)
	_, err := c.Start(ctx)
	require.NoError(t, err)
	_, err = c.Submit(ctx, testutils.CoffeeWalk)
	require.NoError(t, err)
	_, err = c.StartNavigation(ctx)
	require.NoError(t, err)
	return c
}

func TestController_InitialSnapshot(t *testing.T) {
	c := runtime.NewController(nil, nil, runtime.WithSessionID("sess-1"))
	snap := c.Snapshot()

	assert.Equal(t, "sess-1", snap.SessionID)
	assert.Equal(t, domain.StateWelcome, snap.State)
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.Location)
	assert.Nil(t, snap.Route)
	assert.Nil(t, snap.Error)
	assert.Equal(t, domain.DefaultPreferences(), snap.Preferences)
	assert.Equal(t, []domain.Event{domain.EventStart}, snap.Actions)
}

func TestController_ShanghaiScenario(t *testing.T) {
	ctx := context.Background()
	gen := &testutils.MockGenerator{}
	gen.On("Generate", mock.Anything, testutils.Shanghai, testutils.CoffeeWalk).
		Return(testutils.SampleRoute(), nil).Once()

	var transitions []string
	hooks := domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			transitions = append(transitions, string(e.From)+"->"+string(e.To))
		},
	}
	c := runtime.NewController(testutils.StaticLocator(testutils.Shanghai, nil), gen, runtime.WithLifecycleHooks(hooks))

	snap, err := c.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePreferences, snap.State)
	require.NotNil(t, snap.Location)
	assert.Equal(t, testutils.Shanghai, *snap.Location)

	snap, err = c.Submit(ctx, testutils.CoffeeWalk)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePreview, snap.State)
	require.NotNil(t, snap.Route)
	assert.Len(t, snap.Route.Stops, 3)
	assert.Equal(t, testutils.CoffeeWalk, snap.Preferences)

	snap, err = c.StartNavigation(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StateNavigation, snap.State)
	require.NotNil(t, snap.Walk)
	assert.Equal(t, domain.WalkProgress{Index: 0, Total: 3}, *snap.Walk)

	stop, ok := snap.CurrentStop()
	require.True(t, ok)
	assert.Equal(t, "s1", stop.ID)

	snap, err = c.End(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StateWelcome, snap.State)
	assert.Nil(t, snap.Route)
	assert.Nil(t, snap.Walk)

	assert.Equal(t, []string{
		"WELCOME->PREFERENCES",
		"PREFERENCES->ROUTE_PREVIEW",
		"ROUTE_PREVIEW->NAVIGATION",
		"NAVIGATION->WELCOME",
	}, transitions)
	gen.AssertExpectations(t)
}

func TestController_LocationFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("Denied", func(t *testing.T) {
		var located *domain.LocateEvent
		c := runtime.NewController(
			testutils.StaticLocator(domain.Coordinates{}, errors.New("permission denied")),
			okGenerator(),
			runtime.WithLifecycleHooks(domain.LifecycleHooks{
				OnLocate: func(_ context.Context, e *domain.LocateEvent) { located = e },
			}),
		)

		snap, err := c.Start(ctx)
		assert.ErrorIs(t, err, domain.ErrLocationUnavailable)
		assert.Equal(t, domain.StateWelcome, snap.State)
		assert.False(t, snap.Loading)
		assert.Nil(t, snap.Location)
		require.NotNil(t, snap.Error)
		assert.Equal(t, domain.AlertBlocking, snap.Error.Kind)
		assert.Equal(t, domain.MsgLocationDenied, snap.Error.Message)

		require.NotNil(t, located)
		assert.Error(t, located.Err)
		assert.Nil(t, located.Location)
	})

	t.Run("Unsupported", func(t *testing.T) {
		c := runtime.NewController(nil, okGenerator())
		snap, err := c.Start(ctx)
		assert.ErrorIs(t, err, domain.ErrLocationUnavailable)
		assert.ErrorIs(t, err, domain.ErrLocationUnsupported)
		require.NotNil(t, snap.Error)
		assert.Equal(t, domain.MsgLocationUnsupported, snap.Error.Message)
	})

	t.Run("Out Of Range", func(t *testing.T) {
		c := runtime.NewController(testutils.StaticLocator(domain.Coordinates{Latitude: 200}, nil), okGenerator())
		snap, err := c.Start(ctx)
		assert.ErrorIs(t, err, domain.ErrLocationUnavailable)
		assert.Equal(t, domain.StateWelcome, snap.State)
	})

	t.Run("Retry Clears Alert", func(t *testing.T) {
		fail := true
		loc := func(ctx context.Context) (domain.Coordinates, error) {
			if fail {
				return domain.Coordinates{}, errors.New("denied")
			}
			return testutils.Shanghai, nil
		}
		c := runtime.NewController(ports.LocatorFunc(loc), okGenerator())
		_, err := c.Start(ctx)
		require.Error(t, err)

		fail = false
		snap, err := c.Start(ctx)
		require.NoError(t, err)
		assert.Nil(t, snap.Error)
		assert.Equal(t, domain.StatePreferences, snap.State)
	})
}

func TestController_GenerationFailure(t *testing.T) {
	ctx := context.Background()
	calls := 0
	gen := testutils.GeneratorFunc(func(ctx context.Context, loc domain.Coordinates, prefs domain.UserPreferences) (*domain.WalkRoute, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("service unavailable")
		}
		return testutils.SampleRoute(), nil
	})
	c := runtime.NewController(testutils.StaticLocator(testutils.Shanghai, nil), gen)
	_, err := c.Start(ctx)
	require.NoError(t, err)

	snap, err := c.Submit(ctx, testutils.CoffeeWalk)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Equal(t, domain.StatePreferences, snap.State)
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.Route)
	assert.Equal(t, testutils.CoffeeWalk, snap.Preferences, "preferences are kept for resubmission")
	require.NotNil(t, snap.Error)
	assert.Equal(t, domain.AlertBanner, snap.Error.Kind)
	assert.Equal(t, domain.MsgGenerationFailed, snap.Error.Message)

	snap = c.DismissError()
	assert.Nil(t, snap.Error)
	assert.Equal(t, domain.StatePreferences, snap.State)

	snap, err = c.Submit(ctx, snap.Preferences)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePreview, snap.State)
}

func TestController_InvalidRouteIsGenerationFailure(t *testing.T) {
	ctx := context.Background()
	gen := testutils.GeneratorFunc(func(ctx context.Context, loc domain.Coordinates, prefs domain.UserPreferences) (*domain.WalkRoute, error) {
		r := testutils.SampleRoute()
		r.Stops = r.Stops[:1]
		return r, nil
	})
	c := runtime.NewController(testutils.StaticLocator(testutils.Shanghai, nil), gen)
	_, _ = c.Start(ctx)

	snap, err := c.Submit(ctx, testutils.CoffeeWalk)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.ErrorIs(t, err, domain.ErrInvalidRoute)
	assert.Nil(t, snap.Route)
}

func TestController_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	c := runtime.NewController(testutils.StaticLocator(testutils.Shanghai, nil), okGenerator())

	snap, err := c.Submit(ctx, testutils.CoffeeWalk)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.StateWelcome, snap.State)

	_, err = c.StartNavigation(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = c.Back(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = c.End(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = c.Advance(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = c.OpenMap(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = c.SetPreferences(testutils.CoffeeWalk)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = c.Start(ctx)
	require.NoError(t, err)
	_, err = c.Start(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.StatePreferences, c.Snapshot().State)
}

func TestController_Preferences(t *testing.T) {
	ctx := context.Background()
	c := runtime.NewController(testutils.StaticLocator(testutils.Shanghai, nil), okGenerator())
	_, _ = c.Start(ctx)

	snap, err := c.SetPreferences(domain.UserPreferences{Theme: domain.ThemeNight, Duration: domain.DurationLong})
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeNight, snap.Preferences.Theme)

	custom := domain.UserPreferences{Theme: "建筑", Duration: "半天"}
	_, err = c.SetPreferences(custom)
	assert.ErrorIs(t, err, domain.ErrInvalidPreferences)
	_, err = c.Submit(ctx, custom)
	assert.ErrorIs(t, err, domain.ErrInvalidPreferences)
	assert.Equal(t, domain.StatePreferences, c.Snapshot().State)

	relaxed := runtime.NewController(testutils.StaticLocator(testutils.Shanghai, nil), okGenerator(),
		runtime.WithAllowCustomPreferences(true))
	_, _ = relaxed.Start(ctx)
	snap, err = relaxed.Submit(ctx, custom)
	require.NoError(t, err)
	assert.Equal(t, custom, snap.Preferences)
}

func TestController_BackKeepsPreferences(t *testing.T) {
	ctx := context.Background()
	c := runtime.NewController(testutils.StaticLocator(testutils.Shanghai, nil), okGenerator())
	_, _ = c.Start(ctx)
	_, _ = c.Submit(ctx, testutils.CoffeeWalk)

	snap, err := c.Back(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePreferences, snap.State)
	assert.Equal(t, testutils.CoffeeWalk, snap.Preferences)
	assert.Equal(t, []domain.Event{domain.EventSubmit}, snap.Actions)
}

func TestController_Walkthrough(t *testing.T) {
	ctx := context.Background()
	rec := &maps.Recorder{}
	c := navigating(t, runtime.WithMapLauncher(rec))

	url, err := c.OpenMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=31.2046,121.4375", url)

	// Idempotent and does not move the cursor.
	again, err := c.OpenMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, url, again)
	assert.Equal(t, []string{url, url}, rec.URLs())
	assert.Equal(t, 0, c.Snapshot().Walk.Index)

	for i := 1; i <= 3; i++ {
		snap, err := c.Advance(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, snap.Walk.Index)
	}
	snap := c.Snapshot()
	assert.True(t, snap.Walk.Finished)
	assert.Equal(t, domain.StateNavigation, snap.State)

	// Beyond the end.
	for i := 0; i < 3; i++ {
		snap, err = c.Advance(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, snap.Walk.Index)
	}

	_, err = c.OpenMap(ctx)
	assert.ErrorIs(t, err, domain.ErrWalkFinished)

	snap, err = c.End(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StateWelcome, snap.State)
}

func TestController_OpenMapLaunchError(t *testing.T) {
	var opened *domain.MapEvent
	rec := &maps.Recorder{Err: errors.New("no browser")}
	c := navigating(t,
		runtime.WithMapLauncher(rec),
		runtime.WithMapsBaseURL("https://maps.example/dir/"),
		runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnMapOpen: func(_ context.Context, e *domain.MapEvent) { opened = e },
		}),
	)

	url, err := c.OpenMap(context.Background())
	assert.ErrorContains(t, err, "no browser")
	assert.Equal(t, "https://maps.example/dir/?api=1&destination=31.2046,121.4375", url)
	require.NotNil(t, opened)
	assert.Equal(t, "s1", opened.StopID)
	assert.Error(t, opened.Err)
}

func TestController_BusyGuard(t *testing.T) {
	ctx := context.Background()
	gate := testutils.NewGate()
	gen := testutils.GeneratorFunc(func(ctx context.Context, loc domain.Coordinates, prefs domain.UserPreferences) (*domain.WalkRoute, error) {
		if err := gate.Wait(ctx); err != nil {
			return nil, err
		}
		return testutils.SampleRoute(), nil
	})
	c := runtime.NewController(testutils.StaticLocator(testutils.Shanghai, nil), gen)
	_, err := c.Start(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	var submitErr error
	go func() {
		defer wg.Done()
		_, submitErr = c.Submit(ctx, testutils.CoffeeWalk)
	}()
	gate.AwaitEntered(t)

	snap := c.Snapshot()
	assert.True(t, snap.Loading)
	assert.Empty(t, snap.Actions)

	_, err = c.Submit(ctx, testutils.CoffeeWalk)
	assert.ErrorIs(t, err, domain.ErrBusy)
	_, err = c.SetPreferences(testutils.CoffeeWalk)
	assert.ErrorIs(t, err, domain.ErrBusy)
	_, err = c.Back(ctx)
	assert.ErrorIs(t, err, domain.ErrBusy)

	gate.Release()
	wg.Wait()
	require.NoError(t, submitErr)
	assert.Equal(t, domain.StatePreview, c.Snapshot().State)
	assert.False(t, c.Snapshot().Loading)
}

func TestController_CancelledGeneration(t *testing.T) {
	gen := testutils.GeneratorFunc(func(ctx context.Context, loc domain.Coordinates, prefs domain.UserPreferences) (*domain.WalkRoute, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	c := runtime.NewController(testutils.StaticLocator(testutils.Shanghai, nil), gen)
	_, _ = c.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	snap, err := c.Submit(ctx, testutils.CoffeeWalk)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.StatePreferences, snap.State)
	assert.False(t, snap.Loading)
}

func TestController_SnapshotsAreIsolated(t *testing.T) {
	c := navigating(t)
	snap := c.Snapshot()
	snap.Route.Stops[0].Name = "tampered"
	snap.Walk.Index = 2
	assert.Equal(t, "武康大楼", c.Snapshot().Route.Stops[0].Name)
	assert.Equal(t, 0, c.Snapshot().Walk.Index)
}

func TestController_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := runtime.NewController(testutils.StaticLocator(testutils.Shanghai, nil), okGenerator())
	updates := c.Watch(ctx)

	_, err := c.Start(context.Background())
	require.NoError(t, err)

	first := <-updates
	assert.True(t, first.Loading)
	assert.Equal(t, domain.StateWelcome, first.State)

	second := <-updates
	assert.False(t, second.Loading)
	assert.Equal(t, domain.StatePreferences, second.State)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-updates:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
