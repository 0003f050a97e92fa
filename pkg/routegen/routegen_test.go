package routegen_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/ports"
	"github.com/aretw0/citywalk/pkg/routegen"
)

const validReply = `{
  "title": "梧桐区咖啡漫步",
  "totalDistanceKm": "2.5 km",
  "totalTimeMinutes": 90,
  "vibe": "慵懒午后",
  "stops": [
    {"id": "s1", "name": "武康大楼", "description": "地标", "socialMediaTip": "对面街角拍全景",
     "coordinates": {"latitude": 31.2046, "longitude": 121.4375}, "estimatedTimeMinutes": 20, "tags": ["拍照", "建筑"]},
    {"id": "s2", "name": "Seesaw", "description": "咖啡", "socialMediaTip": "必点拿铁",
     "coordinates": {"latitude": 31.2061, "longitude": 121.4412}, "estimatedTimeMinutes": 30, "tags": ["咖啡"]},
    {"id": "s3", "name": "安福路", "description": "小店", "socialMediaTip": "傍晚光线最好",
     "coordinates": {"latitude": 31.2118, "longitude": 121.4439}, "estimatedTimeMinutes": 40, "tags": []}
  ]
}`

type stubCompleter struct {
	reply string
	err   error
	got   ports.CompletionRequest
	calls int
}

func (s *stubCompleter) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	s.calls++
	s.got = req
	return s.reply, s.err
}

func TestBuildPrompt(t *testing.T) {
	prompt := routegen.BuildPrompt(
		domain.Coordinates{Latitude: 31.23, Longitude: 121.47},
		domain.UserPreferences{Theme: domain.ThemeCoffee, Duration: domain.DurationMedium},
	)

	assert.Contains(t, prompt, "纬度 31.23")
	assert.Contains(t, prompt, "经度 121.47")
	assert.Contains(t, prompt, domain.ThemeCoffee)
	assert.Contains(t, prompt, domain.DurationMedium)
	assert.Contains(t, prompt, "3-5")
}

func TestRouteSchema(t *testing.T) {
	s := routegen.RouteSchema()
	require.Equal(t, "object", s.Type)
	assert.ElementsMatch(t, []string{"title", "totalDistanceKm", "totalTimeMinutes", "vibe", "stops"}, s.Required)

	stops := s.Properties["stops"]
	require.NotNil(t, stops)
	require.NotNil(t, stops.MinItems)
	require.NotNil(t, stops.MaxItems)
	assert.Equal(t, int64(domain.MinStops), *stops.MinItems)
	assert.Equal(t, int64(domain.MaxStops), *stops.MaxItems)

	stop := stops.Items
	require.NotNil(t, stop)
	assert.Contains(t, stop.Required, "socialMediaTip")
	assert.Equal(t, "number", stop.Properties["coordinates"].Properties["latitude"].Type)

	// Fresh tree on each call.
	s.Properties["title"].Description = "mutated"
	assert.NotEqual(t, "mutated", routegen.RouteSchema().Properties["title"].Description)
}

func TestParse(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		route, err := routegen.Parse(validReply)
		require.NoError(t, err)
		assert.Equal(t, "梧桐区咖啡漫步", route.Title)
		assert.Len(t, route.Stops, 3)
		assert.Equal(t, "必点拿铁", route.Stops[1].SocialMediaTip)
		assert.InDelta(t, 121.4412, route.Stops[1].Coordinates.Longitude, 1e-9)
	})

	t.Run("Fenced", func(t *testing.T) {
		route, err := routegen.Parse("```json\n" + validReply + "\n```")
		require.NoError(t, err)
		assert.Len(t, route.Stops, 3)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := routegen.Parse("   ")
		assert.ErrorIs(t, err, domain.ErrEmptyResponse)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := routegen.Parse(`{"title": "broken"`)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrInvalidRoute)
	})

	t.Run("Trailing Data", func(t *testing.T) {
		_, err := routegen.Parse(validReply + ` {"more": true}`)
		assert.Error(t, err)
	})

	t.Run("Too Few Stops", func(t *testing.T) {
		_, err := routegen.Parse(`{"title":"t","totalDistanceKm":"1 km","totalTimeMinutes":10,"vibe":"v","stops":[]}`)
		assert.ErrorIs(t, err, domain.ErrInvalidRoute)
	})

	t.Run("Missing Fields", func(t *testing.T) {
		route, err := routegen.Parse(`{"title":"t","totalDistanceKm":"1 km","vibe":"v","stops":[
			{"id":"a","name":"A"},
			{"id":"b","name":"B"},
			{"id":"c","name":"C"}]}`)
		assert.Nil(t, route)
		require.ErrorIs(t, err, domain.ErrInvalidRoute)
		for _, field := range []string{
			"totalTimeMinutes",
			"stops[0].description",
			"stops[0].socialMediaTip",
			"stops[0].coordinates",
			"stops[0].estimatedTimeMinutes",
			"stops[2].tags",
		} {
			assert.ErrorContains(t, err, field)
		}
	})

	t.Run("Missing Longitude", func(t *testing.T) {
		reply := strings.Replace(validReply, `"longitude": 121.4375`, `"lng": 121.4375`, 1)
		_, err := routegen.Parse(reply)
		assert.ErrorIs(t, err, domain.ErrInvalidRoute)
		assert.ErrorContains(t, err, "stops[0].coordinates.longitude")
	})

	t.Run("Null Counts As Missing", func(t *testing.T) {
		reply := strings.Replace(validReply, `"vibe": "慵懒午后"`, `"vibe": null`, 1)
		_, err := routegen.Parse(reply)
		assert.ErrorIs(t, err, domain.ErrInvalidRoute)
		assert.ErrorContains(t, err, "vibe")
	})

	t.Run("Empty Tags Are Present", func(t *testing.T) {
		route, err := routegen.Parse(validReply)
		require.NoError(t, err)
		assert.NotNil(t, route.Stops[2].Tags)
		assert.Empty(t, route.Stops[2].Tags)
	})
}

func TestGenerator_Generate(t *testing.T) {
	loc := domain.Coordinates{Latitude: 31.23, Longitude: 121.47}
	prefs := domain.UserPreferences{Theme: domain.ThemeCoffee, Duration: domain.DurationMedium}

	t.Run("Success", func(t *testing.T) {
		c := &stubCompleter{reply: validReply}
		route, err := routegen.New(c).Generate(context.Background(), loc, prefs)
		require.NoError(t, err)
		assert.Len(t, route.Stops, 3)
		assert.Equal(t, 1, c.calls)
		assert.Equal(t, routegen.SystemInstruction, c.got.SystemInstruction)
		assert.Contains(t, c.got.Prompt, domain.ThemeCoffee)
		assert.NotNil(t, c.got.Schema)
	})

	t.Run("Transport Error", func(t *testing.T) {
		c := &stubCompleter{err: errors.New("quota exceeded")}
		route, err := routegen.New(c).Generate(context.Background(), loc, prefs)
		assert.Nil(t, route)
		assert.ErrorIs(t, err, domain.ErrGenerationFailed)
		assert.ErrorContains(t, err, "quota exceeded")
	})

	t.Run("Empty Reply", func(t *testing.T) {
		route, err := routegen.New(&stubCompleter{}).Generate(context.Background(), loc, prefs)
		assert.Nil(t, route)
		assert.ErrorIs(t, err, domain.ErrGenerationFailed)
		assert.ErrorIs(t, err, domain.ErrEmptyResponse)
	})

	t.Run("Invalid Route", func(t *testing.T) {
		c := &stubCompleter{reply: `{"title":"","totalDistanceKm":"","totalTimeMinutes":1,"vibe":"","stops":[]}`}
		route, err := routegen.New(c).Generate(context.Background(), loc, prefs)
		assert.Nil(t, route)
		assert.ErrorIs(t, err, domain.ErrGenerationFailed)
		assert.ErrorIs(t, err, domain.ErrInvalidRoute)
	})

	t.Run("No Completer", func(t *testing.T) {
		_, err := routegen.New(nil).Generate(context.Background(), loc, prefs)
		assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	})
}
