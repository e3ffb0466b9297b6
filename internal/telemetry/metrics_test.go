package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/cuihairu/bonfire/internal/game"
)

func collect(t *testing.T, r *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := r.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	s, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: not an int64 sum: %T", m.Name, m.Data)
	}
	var total int64
	for _, dp := range s.DataPoints {
		total += dp.Value
	}
	return total
}

func TestEngineMetricsRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewEngineMetrics(mp.Meter(meterName))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	m.GameCreated(ctx, "bf")
	m.TurnTaken(ctx, "bf", 4)
	m.TurnTaken(ctx, "bf", 3)
	m.EpisodeFlushed(ctx, "bf", 2)
	m.DecisionApplied(ctx, "bf", game.Decision{ExtensionAwarded: true, RechargeAmount: 2, Source: "rules"})
	m.DecisionFailed(ctx, "bf")
	m.QuestClaimed(ctx, "bf", 1)
	start := time.Now()
	m.SweepFinished(ctx, game.SweepReport{StartedAt: start, FinishedAt: start.Add(40 * time.Millisecond), Errors: []game.SweepError{{BonfireID: "bf"}}})

	got := collect(t, reader)
	want := map[string]int64{
		"bonfire.games.created":    1,
		"bonfire.turns.total":      2,
		"bonfire.episodes.flushed": 1,
		"bonfire.gm.decisions":     1,
		"bonfire.gm.recharge":      2,
		"bonfire.gm.failures":      1,
		"bonfire.quests.claimed":   1,
		"bonfire.quests.reward":    1,
		"bonfire.sweeps.total":     1,
		"bonfire.sweeps.errors":    1,
	}
	for name, v := range want {
		m, ok := got[name]
		if !ok {
			t.Errorf("metric %s missing", name)
			continue
		}
		if s := sumOf(t, m); s != v {
			t.Errorf("%s = %d, want %d", name, s, v)
		}
	}
	h, ok := got["bonfire.quota.remaining"].Data.(metricdata.Histogram[int64])
	if !ok || len(h.DataPoints) != 1 || h.DataPoints[0].Count != 2 {
		t.Errorf("quota histogram = %+v", got["bonfire.quota.remaining"].Data)
	}
}

func TestProviderWithoutExport(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{ServiceName: "bonfire-test"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Metrics == nil || p.TracerProvider != nil || p.MeterProvider != nil {
		t.Fatalf("unexpected provider %+v", p)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestMiddlewarePassesThrough(t *testing.T) {
	h := Middleware("bonfire")(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/game/state", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("code = %d", rec.Code)
	}
}
