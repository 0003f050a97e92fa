package maps_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/citywalk/pkg/adapters/maps"
	"github.com/aretw0/citywalk/pkg/domain"
)

func TestLink(t *testing.T) {
	c := domain.Coordinates{Latitude: 31.2046, Longitude: 121.4375}

	assert.Equal(t,
		"https://www.google.com/maps/dir/?api=1&destination=31.2046,121.4375",
		maps.Link("", c))
	assert.Equal(t, maps.Link("", c), maps.Link(maps.DefaultBaseURL, c))
	assert.Equal(t,
		"https://maps.example/dir?hl=zh&api=1&destination=-33.86,151.2",
		maps.Link("https://maps.example/dir?hl=zh", domain.Coordinates{Latitude: -33.86, Longitude: 151.2}))
}

func TestWriterLauncher(t *testing.T) {
	var buf bytes.Buffer
	err := maps.WriterLauncher{W: &buf}.Launch(context.Background(), "https://x")
	assert.NoError(t, err)
	assert.Equal(t, "https://x\n", buf.String())
}

func TestRecorder(t *testing.T) {
	var r maps.Recorder
	_ = r.Launch(context.Background(), "a")
	_ = r.Launch(context.Background(), "a")
	assert.Equal(t, []string{"a", "a"}, r.URLs())
}
