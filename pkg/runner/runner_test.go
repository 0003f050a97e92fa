package runner_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/citywalk/internal/runtime"
	"github.com/aretw0/citywalk/internal/testutils"
	"github.com/aretw0/citywalk/pkg/adapters/maps"
	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/runner"
)

func okGenerator() testutils.GeneratorFunc {
	return func(ctx context.Context, loc domain.Coordinates, prefs domain.UserPreferences) (*domain.WalkRoute, error) {
		return testutils.SampleRoute(), nil
	}
}

func script(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func TestRunner_FullWalk(t *testing.T) {
	rec := &maps.Recorder{}
	ctrl := runtime.NewController(testutils.StaticLocator(testutils.Shanghai, nil), okGenerator(),
		runtime.WithMapLauncher(rec))

	out := &bytes.Buffer{}
	r := runner.NewRunner(ctrl,
		runner.WithInputHandler(runner.NewTextHandler(script("s", "t 2", "d 3", "g", "n", "m", "n", "n", "n", "h", "q"), out)),
	)
	require.NoError(t, r.Run(context.Background()))

	snap := ctrl.Snapshot()
	assert.Equal(t, domain.StateWelcome, snap.State)
	assert.Nil(t, snap.Route)
	assert.Equal(t, domain.UserPreferences{Theme: domain.ThemeCoffee, Duration: domain.DurationLong}, snap.Preferences)

	text := out.String()
	assert.Contains(t, text, "CityWalk 智行")
	assert.Contains(t, text, runner.LabelLocating)
	assert.Contains(t, text, runner.LabelGenerating)
	assert.Contains(t, text, "梧桐区咖啡漫步")
	assert.Contains(t, text, "当前站点 1 / 3")
	assert.Contains(t, text, "地图链接: https://www.google.com/maps/dir/?api=1&destination=31.2046,121.4375")
	assert.Contains(t, text, "抵达终点！")
	assert.Len(t, rec.URLs(), 1)
}

func TestRunner_RejectionsKeepLooping(t *testing.T) {
	ctrl := runtime.NewController(testutils.StaticLocator(testutils.Shanghai, nil), okGenerator())

	out := &bytes.Buffer{}
	r := runner.NewRunner(ctrl,
		runner.WithInputHandler(runner.NewTextHandler(script("g", "s", "t", "t 建筑", "t 3"), out)),
	)
	// Input ends without "q": EOF ends the session.
	require.NoError(t, r.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, `unknown command: "g"`)
	assert.Contains(t, text, "漫步风格 需要参数")
	assert.Contains(t, text, "invalid preferences")
	assert.Equal(t, domain.ThemeHistory, ctrl.Snapshot().Preferences.Theme)
}

func TestRunner_LocationDeniedShowsAlert(t *testing.T) {
	ctrl := runtime.NewController(testutils.StaticLocator(domain.Coordinates{}, domain.ErrLocationUnsupported), okGenerator())

	out := &bytes.Buffer{}
	r := runner.NewRunner(ctrl,
		runner.WithInputHandler(runner.NewTextHandler(script("s", "c", "q"), out)),
	)
	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, out.String(), "[!!] "+domain.MsgLocationUnsupported)
	assert.Contains(t, out.String(), "[c] 关闭")
	assert.Nil(t, ctrl.Snapshot().Error)
	assert.Equal(t, domain.StateWelcome, ctrl.Snapshot().State)
}

func TestRunner_InterruptCancelsGeneration(t *testing.T) {
	gate := testutils.NewGate()
	blocking := testutils.GeneratorFunc(func(ctx context.Context, loc domain.Coordinates, prefs domain.UserPreferences) (*domain.WalkRoute, error) {
		if err := gate.Wait(ctx); err != nil {
			return nil, err
		}
		return testutils.SampleRoute(), nil
	})
	ctrl := runtime.NewController(testutils.StaticLocator(testutils.Shanghai, nil), blocking)

	interrupts := make(chan struct{})
	out := &bytes.Buffer{}
	r := runner.NewRunner(ctrl,
		runner.WithInputHandler(runner.NewJSONHandler(script(`"s"`, `{"command":"submit"}`, `"q"`), out)),
		runner.WithInterruptSource(interrupts),
	)

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	gate.AwaitEntered(t)
	interrupts <- struct{}{}

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not exit")
	}

	snap := ctrl.Snapshot()
	assert.Equal(t, domain.StatePreferences, snap.State)
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.Error)
	assert.Contains(t, out.String(), `"message":"已取消"`)
}

func TestRunner_ContextCancelStops(t *testing.T) {
	ctrl := runtime.NewController(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := runner.NewRunner(ctrl, runner.WithInputHandler(runner.NewTextHandler(script("s"), &bytes.Buffer{})))
	assert.NoError(t, r.Run(ctx))
	assert.Equal(t, domain.StateWelcome, ctrl.Snapshot().State)
}
