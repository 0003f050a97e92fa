package observability

import (
	"context"
	"net/http"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/citywalk/pkg/domain"
)

const namespace = "citywalk"

// Metrics holds the Prometheus collectors of the flow.
type Metrics struct {
	registry *prometheus.Registry

	Transitions      *prometheus.CounterVec
	Locations        *prometheus.CounterVec
	LocateDuration   prometheus.Histogram
	Generations      *prometheus.CounterVec
	GenerateDuration prometheus.Histogram
	GeneratedStops   prometheus.Histogram
	MapOpens         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on a dedicated registry,
// together with the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Total number of view state transitions",
		}, []string{"from", "to", "trigger"}),
		Locations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_total",
			Help:      "Location acquisitions by outcome",
		}, []string{"outcome"}),
		LocateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "locate_duration_seconds",
			Help:      "Duration of location acquisitions",
			Buckets:   prometheus.DefBuckets,
		}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Route generations by theme and outcome",
		}, []string{"theme", "outcome"}),
		GenerateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_duration_seconds",
			Help:      "Duration of route generation calls",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		GeneratedStops: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generated_stops",
			Help:      "Number of stops per generated route",
			Buckets:   []float64{3, 4, 5},
		}),
		MapOpens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_opens_total",
			Help:      "Map links handed to the launcher by outcome",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.Transitions,
		m.Locations,
		m.LocateDuration,
		m.Generations,
		m.GenerateDuration,
		m.GeneratedStops,
		m.MapOpens,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(e.From), string(e.To), string(e.Trigger)).Inc()
		},
		OnLocate: func(_ context.Context, e *domain.LocateEvent) {
			m.Locations.WithLabelValues(outcome(e.Err)).Inc()
			m.LocateDuration.Observe(e.Elapsed.Seconds())
		},
		OnGenerate: func(_ context.Context, e *domain.GenerateEvent) {
			m.Generations.WithLabelValues(ThemeLabel(e.Preferences.Theme), outcome(e.Err)).Inc()
			m.GenerateDuration.Observe(e.Elapsed.Seconds())
			if e.Err == nil {
				m.GeneratedStops.Observe(float64(e.Stops))
			}
		},
		OnMapOpen: func(_ context.Context, e *domain.MapEvent) {
			m.MapOpens.WithLabelValues(outcome(e.Err)).Inc()
		},
	}
}

// CustomThemeLabel replaces free-text themes in metric labels.
const CustomThemeLabel = "custom"

// ThemeLabel keeps catalog themes and folds everything else into CustomThemeLabel,
// bounding the label cardinality.
func ThemeLabel(theme string) string {
	if slices.Contains(domain.Themes, theme) {
		return theme
	}
	return CustomThemeLabel
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
