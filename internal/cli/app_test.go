package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/citywalk/internal/config"
	"github.com/aretw0/citywalk/internal/logging"
	"github.com/aretw0/citywalk/internal/testutils"
	"github.com/aretw0/citywalk/pkg/adapters/locator"
	"github.com/aretw0/citywalk/pkg/adapters/maps"
	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/ports"
)

type replyCompleter string

func (r replyCompleter) Complete(context.Context, ports.CompletionRequest) (string, error) {
	return string(r), nil
}

const reply = `{"title":"外滩夜游","totalDistanceKm":"3 km","totalTimeMinutes":120,"vibe":"璀璨",
"stops":[
 {"id":"a","name":"外白渡桥","description":"d","socialMediaTip":"t","coordinates":{"latitude":31.2455,"longitude":121.4905},"estimatedTimeMinutes":20,"tags":["夜景"]},
 {"id":"b","name":"和平饭店","description":"d","socialMediaTip":"t","coordinates":{"latitude":31.2405,"longitude":121.4870},"estimatedTimeMinutes":30,"tags":["建筑"]},
 {"id":"c","name":"十六铺","description":"d","socialMediaTip":"t","coordinates":{"latitude":31.2290,"longitude":121.4950},"estimatedTimeMinutes":30,"tags":["江景"]}
]}`

func staticConfig() *config.Config {
	cfg := config.Default()
	cfg.SetStaticLocation(testutils.Shanghai)
	return cfg
}

func TestNewLocator(t *testing.T) {
	logger := logging.NewNop()

	cfg := staticConfig()
	loc, err := NewLocator(cfg, logger).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testutils.Shanghai, loc)

	cfg.Location.Provider = config.ProviderNone
	assert.IsType(t, locator.Unsupported{}, NewLocator(cfg, logger))

	cfg.Location.Provider = config.ProviderIP
	assert.IsType(t, &locator.IPAPI{}, NewLocator(cfg, logger))
}

func TestNewLauncher(t *testing.T) {
	cfg := config.Default()
	rec := &maps.Recorder{}

	assert.Same(t, rec, newLauncher(cfg, AppOptions{Launcher: rec}))
	assert.IsType(t, maps.BrowserLauncher{}, newLauncher(cfg, AppOptions{}))

	cfg.Maps.Open = false
	var buf bytes.Buffer
	assert.IsType(t, maps.WriterLauncher{}, newLauncher(cfg, AppOptions{LinkWriter: &buf}))
	assert.Nil(t, newLauncher(cfg, AppOptions{}))
}

func TestNewApp(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	_, err := NewApp(ctx, staticConfig(), logger, AppOptions{})
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)

	app, err := NewApp(ctx, staticConfig(), logger, AppOptions{Completer: replyCompleter(reply), Metrics: true})
	require.NoError(t, err)
	require.NotNil(t, app.Metrics)

	snap, err := app.Planner.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePreferences, snap.State)

	snap, err = app.Planner.Submit(ctx, domain.DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, "外滩夜游", snap.Route.Title)
}

func TestRunSession_ConfirmMap(t *testing.T) {
	rec := &maps.Recorder{}
	var out bytes.Buffer

	err := RunSession(context.Background(), staticConfig(), logging.NewNop(), RunOptions{
		Headless:   true,
		ConfirmMap: true,
		Stdin:      strings.NewReader("s\ng\nn\nm\ny\nm\nn\nq\n"),
		Stdout:     &out,
		App:        AppOptions{Completer: replyCompleter(reply), Launcher: rec},
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "外滩夜游")
	assert.Contains(t, out.String(), "打开地图应用? (y/n)")
	assert.Len(t, rec.URLs(), 1, "the declined launch must not reach the launcher")
}

func TestRunSession_JSON(t *testing.T) {
	var out bytes.Buffer

	err := RunSession(context.Background(), staticConfig(), logging.NewNop(), RunOptions{
		JSON:   true,
		Stdin:  strings.NewReader(`{"command":"start"}` + "\n" + `"q"` + "\n"),
		Stdout: &out,
		App:    AppOptions{Completer: replyCompleter(reply)},
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), `"PREFERENCES"`)
	assert.NotContains(t, out.String(), "Bye!")
}
