/*
Package observability provides lifecycle hooks for monitoring the city-walk flow.

Metrics records Prometheus counters and histograms for transitions, location acquisitions,
route generations and map launches; LoggingHooks writes the same events as structured logs.
Both plug into the planner through domain.LifecycleHooks and can be merged.
*/
package observability
