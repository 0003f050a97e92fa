package locator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/citywalk/internal/logging"
	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/ports"
)

// DefaultIPAPIURL is the public ip-api.com JSON endpoint.
const DefaultIPAPIURL = "http://ip-api.com/json/?fields=status,message,lat,lon,city"

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Body)
}

type ipapiResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
}

// IPAPI approximates the position from the public IP address.
type IPAPI struct {
	url        string
	client     *http.Client
	maxAttempt int
	backoff    time.Duration
	logger     *slog.Logger
}

// IPAPIOption configures the IPAPI locator.
type IPAPIOption func(*IPAPI)

// WithURL overrides the lookup endpoint.
func WithURL(url string) IPAPIOption {
	return func(l *IPAPI) {
		if url != "" {
			l.url = url
		}
	}
}

// WithHTTPClient sets the HTTP client used for lookups.
func WithHTTPClient(c *http.Client) IPAPIOption {
	return func(l *IPAPI) {
		if c != nil {
			l.client = c
		}
	}
}

// WithRetry sets the number of attempts and the initial backoff for transient failures.
func WithRetry(attempts int, backoff time.Duration) IPAPIOption {
	return func(l *IPAPI) {
		if attempts > 0 {
			l.maxAttempt = attempts
		}
		l.backoff = backoff
	}
}

// WithLogger configures a logger for the locator.
func WithLogger(logger *slog.Logger) IPAPIOption {
	return func(l *IPAPI) {
		l.logger = logger
	}
}

var _ ports.Locator = (*IPAPI)(nil)

// NewIPAPI creates an IP-based locator.
func NewIPAPI(opts ...IPAPIOption) *IPAPI {
	l := &IPAPI{
		url:        DefaultIPAPIURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		maxAttempt: 1,
		backoff:    200 * time.Millisecond,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate queries the endpoint and returns the reported position.
func (l *IPAPI) Locate(ctx context.Context) (domain.Coordinates, error) {
	resp, err := l.doWithRetry(ctx)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("ip lookup: %w", err)
	}
	defer resp.Body.Close()

	var body ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Coordinates{}, fmt.Errorf("ip lookup: decode: %w", err)
	}
	if body.Status != "success" {
		msg := body.Message
		if msg == "" {
			msg = "status " + body.Status
		}
		return domain.Coordinates{}, fmt.Errorf("ip lookup: %s", msg)
	}

	c := domain.Coordinates{Latitude: body.Lat, Longitude: body.Lon}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, fmt.Errorf("ip lookup: %w", err)
	}
	l.logger.Debug("position resolved from ip", "city", body.City, "location", c.String())
	return c, nil
}

func (l *IPAPI) do(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

// doWithRetry retries network errors, 429 and 5xx with exponential backoff.
func (l *IPAPI) doWithRetry(ctx context.Context) (*http.Response, error) {
	backoff := l.backoff
	var lastErr error

	for attempt := 1; attempt <= l.maxAttempt; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := l.do(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}
		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}
		if !retry || attempt == l.maxAttempt {
			return nil, lastErr
		}

		l.logger.Debug("retrying ip lookup", "attempt", attempt, "err", err)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, lastErr
}
