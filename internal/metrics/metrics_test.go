package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "/api/admin/news/{id}", Endpoint("/api/admin/news/3f2b8c1e-9a4d-4b7e-8c2f-1a2b3c4d5e6f"))
	assert.Equal(t, "/api/admin/reports/{id}/status", Endpoint("/api/admin/reports/3F2B8C1E-9A4D-4B7E-8C2F-1A2B3C4D5E6F/status"))
	assert.Equal(t, "/api/uploads/{filename}", Endpoint("/api/uploads/cv_abc.pdf"))
	assert.Equal(t, "/api/news/latest", Endpoint("/api/news/latest"))
}

func TestPrometheusMiddleware_CountsRequests(t *testing.T) {
	handler := PrometheusMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodPost, "/api/feedback", "201"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/feedback", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodPost, "/api/feedback", "201")))
}

func TestBusinessCounters(t *testing.T) {
	before := testutil.ToFloat64(submissionsTotal.WithLabelValues("report"))
	RecordSubmission("report")
	assert.Equal(t, before+1, testutil.ToFloat64(submissionsTotal.WithLabelValues("report")))

	hits := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("news", "hit"))
	RecordCacheLookup("news", true)
	RecordCacheLookup("news", false)
	assert.Equal(t, hits+1, testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("news", "hit")))
}
