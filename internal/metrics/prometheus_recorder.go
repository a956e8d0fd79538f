package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "pressbuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration  prom.Histogram
	stageDuration  *prom.HistogramVec
	buildOutcome   *prom.CounterVec
	siteItems      *prom.GaugeVec
	rebuildTrigger *prom.CounterVec
	reloads        prom.Counter
}

// NewPrometheusRecorder constructs the metrics and registers them on reg. A
// nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total site build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		siteItems: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "site_items",
			Help:      "Items in the last built site by kind",
		}, []string{"kind"}),
		rebuildTrigger: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rebuild_trigger_events_total",
			Help:      "File system events that advanced the rebuild loop",
		}, []string{"op"}),
		reloads: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reload_signals_delivered_total",
			Help:      "Reload signals handed to polling browsers",
		}),
	}
	reg.MustRegister(pr.buildDuration, pr.stageDuration, pr.buildOutcome, pr.siteItems, pr.rebuildTrigger, pr.reloads)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetSiteItems(kind string, n int) {
	if p == nil {
		return
	}
	p.siteItems.WithLabelValues(kind).Set(float64(n))
}

func (p *PrometheusRecorder) IncRebuildTrigger(op string) {
	if p == nil {
		return
	}
	p.rebuildTrigger.WithLabelValues(op).Inc()
}

func (p *PrometheusRecorder) IncReloadDelivered() {
	if p == nil {
		return
	}
	p.reloads.Inc()
}
