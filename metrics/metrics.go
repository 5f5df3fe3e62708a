package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the prediction service collectors.
type Metrics struct {
	predictions *prometheus.CounterVec
	cacheHits   prometheus.Counter
	fallbacks   *prometheus.CounterVec
	errors      *prometheus.CounterVec
	latency     prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loan_predictor",
			Name:      "predictions_total",
			Help:      "Predictions served, by outcome.",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loan_predictor",
			Name:      "cache_hits_total",
			Help:      "Predictions answered from the cache.",
		}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loan_predictor",
			Name:      "encoder_fallbacks_total",
			Help:      "Categorical values the encoder did not recognise, by field.",
		}, []string{"field"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loan_predictor",
			Name:      "prediction_errors_total",
			Help:      "Failed predictions, by stage.",
		}, []string{"stage"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "loan_predictor",
			Name:      "prediction_duration_seconds",
			Help:      "Time spent producing a prediction.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
	reg.MustRegister(m.predictions, m.cacheHits, m.fallbacks, m.errors, m.latency)
	return m
}

func (m *Metrics) ObservePrediction(approved, cached bool, took time.Duration) {
	outcome := "denied"
	if approved {
		outcome = "approved"
	}
	m.predictions.WithLabelValues(outcome).Inc()
	if cached {
		m.cacheHits.Inc()
	}
	m.latency.Observe(took.Seconds())
}

func (m *Metrics) ObserveFallbacks(fields []string) {
	for _, f := range fields {
		m.fallbacks.WithLabelValues(f).Inc()
	}
}

func (m *Metrics) ObserveError(stage string) {
	m.errors.WithLabelValues(stage).Inc()
}
