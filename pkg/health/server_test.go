package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"guild_warden/pkg/config"
)

func newTestServer(t *testing.T) *Server {
	statusFn := func() Status {
		return Status{ActivePolls: 2, OpenTickets: 1, TrackedUsers: 3}
	}
	return NewServer(config.HealthConfig{Port: 8080}, statusFn, zaptest.NewLogger(t))
}

func TestRoot(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Uptime string `json:"uptime"`
		Status Status `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Status.ActivePolls)
	assert.Equal(t, 1, body.Status.OpenTickets)
	assert.Equal(t, 3, body.Status.TrackedUsers)
	assert.NotEmpty(t, body.Uptime)
}
