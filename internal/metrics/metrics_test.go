package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectMetric extracts the label-matched metric from a collector.
func collectMetric(t *testing.T, c prometheus.Collector, labels map[string]string) *dto.Metric {
	t.Helper()
	ch := make(chan prometheus.Metric, 100)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		d := &dto.Metric{}
		if err := m.Write(d); err != nil {
			continue
		}
		if hasLabels(d, labels) {
			return d
		}
	}
	return nil
}

func hasLabels(d *dto.Metric, labels map[string]string) bool {
	for k, v := range labels {
		found := false
		for _, lp := range d.GetLabel() {
			if lp.GetName() == k && lp.GetValue() == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func TestRowProcessed(t *testing.T) {
	m := New()

	m.RowProcessed(core.OutcomeCreated)
	m.RowProcessed(core.OutcomeCreated)
	m.RowProcessed(core.OutcomeFailed)

	created := collectMetric(t, m.rowsTotal, map[string]string{"outcome": "created"})
	require.NotNil(t, created)
	assert.Equal(t, float64(2), created.GetCounter().GetValue())

	failed := collectMetric(t, m.rowsTotal, map[string]string{"outcome": "failed"})
	require.NotNil(t, failed)
	assert.Equal(t, float64(1), failed.GetCounter().GetValue())
}

func TestBatchFinished(t *testing.T) {
	m := New()

	m.BatchFinished(core.ModeCommit, 10, 2*time.Second, nil)
	m.BatchFinished(core.ModeCommit, 3, time.Second, fmt.Errorf("acquire import slot: %w", core.ErrTooManyImports))
	m.BatchFinished(core.ModeValidate, 3, time.Millisecond, errors.New("load categories: boom"))

	tests := []struct {
		mode, status string
	}{
		{core.ModeCommit, statusOK},
		{core.ModeCommit, statusBusy},
		{core.ModeValidate, statusError},
	}
	for _, tt := range tests {
		d := collectMetric(t, m.batchesTotal, map[string]string{"mode": tt.mode, "status": tt.status})
		require.NotNil(t, d, "%s/%s", tt.mode, tt.status)
		assert.Equal(t, float64(1), d.GetCounter().GetValue())
	}

	hist := collectMetric(t, m.batchDuration, map[string]string{"mode": core.ModeCommit})
	require.NotNil(t, hist)
	assert.Equal(t, uint64(2), hist.GetHistogram().GetSampleCount())
	assert.InDelta(t, 3.0, hist.GetHistogram().GetSampleSum(), 0.001)
}

func TestBatchStatus(t *testing.T) {
	assert.Equal(t, statusOK, batchStatus(nil))
	assert.Equal(t, statusBusy, batchStatus(core.ErrTooManyImports))
	assert.Equal(t, statusCancelled, batchStatus(fmt.Errorf("import stopped before row 3: %w", context.Canceled)))
	assert.Equal(t, statusCancelled, batchStatus(context.DeadlineExceeded))
	assert.Equal(t, statusError, batchStatus(errors.New("boom")))
}

func TestMiddleware(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/api/products/bulk-import", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/products/bulk-import", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	ok := collectMetric(t, m.httpRequestsTotal, map[string]string{
		"method": "GET", "path": "/api/categories", "status": "200",
	})
	require.NotNil(t, ok)
	assert.Equal(t, float64(3), ok.GetCounter().GetValue())

	bad := collectMetric(t, m.httpRequestsTotal, map[string]string{
		"method": "POST", "path": "/api/products/bulk-import", "status": "400",
	})
	require.NotNil(t, bad)
	assert.Equal(t, float64(1), bad.GetCounter().GetValue())

	inFlight := collectMetric(t, m.httpRequestsInFlight, nil)
	require.NotNil(t, inFlight)
	assert.Equal(t, float64(0), inFlight.GetGauge().GetValue())
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	d := collectMetric(t, m.httpRequestsTotal, map[string]string{"path": "/healthz", "status": "200"})
	require.NotNil(t, d)
}

func TestRegisterLimiter(t *testing.T) {
	m := New()
	limiter := core.NewImportLimiter(3, time.Second)
	require.NoError(t, m.RegisterLimiter(limiter))

	release, err := limiter.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "catalog_import_slots") {
			values[f.GetName()] = f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	assert.Equal(t, float64(1), values["catalog_import_slots_active"])
	assert.Equal(t, float64(3), values["catalog_import_slots_capacity"])

	assert.Error(t, m.RegisterLimiter(limiter), "registering twice should fail")
}

func TestHandler(t *testing.T) {
	m := New()
	m.RowProcessed(core.OutcomeUpdated)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `catalog_import_rows_total{outcome="updated"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestPoolStatsCollector_Describe(t *testing.T) {
	c := NewPoolStatsCollector(nil)

	ch := make(chan *prometheus.Desc, 20)
	c.Describe(ch)
	close(ch)

	var names []string
	for d := range ch {
		names = append(names, d.String())
	}
	assert.Len(t, names, 9)
	assert.Contains(t, strings.Join(names, "\n"), "catalog_db_pool_acquired_connections")
	assert.Contains(t, strings.Join(names, "\n"), "catalog_db_pool_empty_acquire_count_total")

	var _ prometheus.Collector = c
}
