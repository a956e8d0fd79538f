package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_Records(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.ObserveStageDuration("render", 150*time.Millisecond)
	pr.IncBuildOutcome(OutcomeSuccess)
	pr.IncBuildOutcome(OutcomeFailed)
	pr.IncBuildOutcome(OutcomeSuccess)
	pr.SetSiteItems("posts", 3)
	pr.IncRebuildTrigger("modify")
	pr.IncReloadDelivered()

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 6)

	values := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "{" + lp.GetName() + "=" + lp.GetValue() + "}"
			}
			switch {
			case m.GetCounter() != nil:
				values[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[key] = m.GetGauge().GetValue()
			}
		}
	}
	assert.InDelta(t, 2, values["pressbuilder_build_outcomes_total{outcome=success}"], 0)
	assert.InDelta(t, 1, values["pressbuilder_build_outcomes_total{outcome=failed}"], 0)
	assert.InDelta(t, 3, values["pressbuilder_site_items{kind=posts}"], 0)
	assert.InDelta(t, 1, values["pressbuilder_rebuild_trigger_events_total{op=modify}"], 0)
	assert.InDelta(t, 1, values["pressbuilder_reload_signals_delivered_total"], 0)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveBuildDuration(time.Second)
		pr.IncBuildOutcome(OutcomeCanceled)
		pr.IncReloadDelivered()
	})
}

func TestNoopRecorder_SatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.SetSiteItems("pages", 1)
}

func TestHTTPHandler_ServesMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncReloadDelivered()

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "pressbuilder_reload_signals_delivered_total 1")
}
