package maps

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/browser"

	"github.com/aretw0/citywalk/pkg/ports"
)

// BrowserLauncher opens links with the operating system's default handler.
type BrowserLauncher struct{}

var _ ports.MapLauncher = BrowserLauncher{}

// Launch opens the URL without waiting for the application.
func (BrowserLauncher) Launch(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

// WriterLauncher prints links instead of opening them (headless hosts, pipes).
type WriterLauncher struct {
	W io.Writer
}

var _ ports.MapLauncher = WriterLauncher{}

// Launch writes the URL on its own line.
func (l WriterLauncher) Launch(_ context.Context, url string) error {
	_, err := fmt.Fprintln(l.W, url)
	return err
}

// Recorder collects launched links. The zero value is ready to use.
type Recorder struct {
	mu   sync.Mutex
	urls []string
	Err  error
}

var _ ports.MapLauncher = (*Recorder)(nil)

// Launch records the URL and returns r.Err.
func (r *Recorder) Launch(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	return r.Err
}

// URLs returns a copy of the recorded links.
func (r *Recorder) URLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}
