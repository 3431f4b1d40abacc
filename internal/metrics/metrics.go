// Package metrics records search outcomes in Prometheus.
package metrics

import (
	"time"

	"github.com/pdrpinto/stastar"
	"github.com/prometheus/client_golang/prometheus"
)

// Observer implements stastar.Observer.
type Observer struct {
	searches   *prometheus.CounterVec
	expansions prometheus.Histogram
	pathLength prometheus.Histogram
	duration   prometheus.Histogram
}

// NewObserver creates the collectors and registers them with registerer.
func NewObserver(registerer prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		// Labels: "goal_reached", "open_exhausted", "iteration_limit"
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stastar_searches_total",
			Help: "Completed searches by termination reason",
		}, []string{"termination"}),
		expansions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stastar_search_expansions",
			Help:    "Open-set pops per search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		pathLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stastar_path_states",
			Help:    "States in returned paths",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stastar_search_duration_seconds",
			Help:    "Wall time per search",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
	for _, c := range []prometheus.Collector{o.searches, o.expansions, o.pathLength, o.duration} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ObserveSearch records one completed search.
func (o *Observer) ObserveSearch(result stastar.Result, elapsed time.Duration) {
	o.searches.WithLabelValues(result.Termination.String()).Inc()
	o.expansions.Observe(float64(result.Expansions))
	o.duration.Observe(elapsed.Seconds())
	if result.Found {
		o.pathLength.Observe(float64(len(result.Path)))
	}
}

var _ stastar.Observer = (*Observer)(nil)
