package microservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	s := NewBaseServer(zerolog.Nop(), ":0")
	s.HandleState("/state/", func(_ context.Context, key string) (any, error) { return key, nil })
	counter := httpRequestsTotal.WithLabelValues("/state/{key}", http.MethodGet, "200")
	before := testutil.ToFloat64(counter)

	for _, key := range []string{"a", "b"} {
		s.Mux().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/state/"+key, nil))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
