package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/citywatch/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve_CountsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.Observe("create", 10*time.Millisecond, nil)
	c.Observe("create", 5*time.Millisecond, nil)
	c.Observe("create", time.Millisecond, fmt.Errorf("%w: db down", common.ErrBackendUnavailable))
	c.Observe("list", time.Millisecond, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.operations.WithLabelValues("create", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("create", OutcomeUnavailable)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("list", OutcomeOK)))

	// one histogram series per op
	assert.Equal(t, 2, testutil.CollectAndCount(c.latency))
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, OutcomeOK},
		{"not found", common.ErrorNotFound, OutcomeNotFound},
		{"conflict", fmt.Errorf("%w: email", common.ErrConflict), OutcomeConflict},
		{"unavailable", fmt.Errorf("%w: x", common.ErrBackendUnavailable), OutcomeUnavailable},
		{"other", errors.New("boom"), OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestNewMux_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.Observe("create", time.Millisecond, nil)

	srv := httptest.NewServer(NewMux(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "citywatch_backend_operations_total")
	assert.Contains(t, string(body), "citywatch_backend_operation_seconds")
}
