package metric

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/LetzTalk/internal/domain/output"
)

func TestServer_HealthReportsBrokerStats(t *testing.T) {
	srv := NewServer(func() output.BrokerStats {
		return output.BrokerStats{WaitingCount: 1, ActiveRooms: 2, SocialRooms: 3, Connections: 5}
	})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 5, got.Broker.Connections)
	assert.Equal(t, 1, got.Broker.WaitingCount)
}

func TestServer_ExposesMetrics(t *testing.T) {
	srv := NewServer(func() output.BrokerStats { return output.BrokerStats{} })

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
