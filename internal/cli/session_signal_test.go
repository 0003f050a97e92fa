//go:build unix

package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/citywalk/internal/config"
	"github.com/aretw0/citywalk/internal/logging"
)

// lockedBuffer is written by the session goroutine and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunSession_InterruptCancelsRequestOnly(t *testing.T) {
	entered := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Location.Provider = config.ProviderIP
	cfg.Location.Endpoint = srv.URL

	out := &lockedBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- RunSession(context.Background(), cfg, logging.NewNop(), RunOptions{
			Headless: true,
			Stdin:    strings.NewReader("s\nq\n"),
			Stdout:   out,
			App:      AppOptions{Completer: replyCompleter(reply)},
		})
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "location request never started")
	}
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "session did not finish")
	}

	text := out.String()
	assert.Contains(t, text, "正在定位...")
	assert.Contains(t, text, "已取消")
	assert.NotContains(t, text, "[!!]", "the cancelled request must not leave a blocking alert")
	after := text[strings.Index(text, "已取消"):]
	assert.Contains(t, after, "[s] 开始探索", "the welcome view is shown again")
	assert.Contains(t, after, "> ", "the session prompts again after the cancel")
}
