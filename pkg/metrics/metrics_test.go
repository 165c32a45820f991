package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/flarecloud/pkg/configs"
	"github.com/yeisme/flarecloud/pkg/metrics"
)

func TestObserveSweep(t *testing.T) {
	okBefore := testutil.ToFloat64(metrics.SweepRunsTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(metrics.SweepRunsTotal.WithLabelValues("error"))
	entryBefore := testutil.ToFloat64(metrics.SweepErrorsTotal)

	metrics.ObserveSweep(2, time.Second, nil)
	metrics.ObserveSweep(0, time.Millisecond, errors.New("read dir"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.SweepRunsTotal.WithLabelValues("ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(metrics.SweepRunsTotal.WithLabelValues("error")))
	assert.Equal(t, entryBefore+2, testutil.ToFloat64(metrics.SweepErrorsTotal))
}

func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := configs.Default().Metrics
	cfg.Enabled = true

	metrics.InitMetrics(cfg)
	metrics.InitMetrics(cfg)
	metrics.ObserveUpload(5)

	r := gin.New()
	metrics.RegisterRoutes(r, cfg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "flarecloud_files_uploads_total"))
}

func TestRegisterRoutes_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	metrics.RegisterRoutes(r, configs.Default().Metrics)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
