package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModelSource struct {
	families []string
}

func (f *fakeModelSource) ActiveFamilies() []string { return f.families }

func readyStatus(t *testing.T, s *Server) (int, ReadyResponse) {
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	s.handleReady(rec, req)

	var body ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestReadyRequiresLoadedModels(t *testing.T) {
	models := &fakeModelSource{}
	s := NewServer(Config{ServiceName: "predictd", Models: models})
	s.SetReady(true)

	code, body := readyStatus(t, s)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "none_loaded", body.Checks["models"])

	models.families = []string{"neural_net", "sequence"}
	code, body = readyStatus(t, s)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "2 loaded", body.Checks["models"])
}

func TestReadyRespectsManualFlag(t *testing.T) {
	s := NewServer(Config{ServiceName: "predictd"})

	code, body := readyStatus(t, s)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", body.Checks["service"])

	s.SetReady(true)
	code, _ = readyStatus(t, s)
	assert.Equal(t, http.StatusOK, code)
}

func TestHealthEndpointAlwaysOK(t *testing.T) {
	s := NewServer(Config{ServiceName: "predictd", Version: "1.2.3"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "1.2.3", body.Version)
}
