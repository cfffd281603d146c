package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/LetzTalk/internal/application/config"
)

type iceServerJSON struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username"`
	Credential string   `json:"credential"`
}

func callIce(t *testing.T, h *IceHandler) []iceServerJSON {
	t.Helper()

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/ice", nil), rec)

	require.NoError(t, h.IceServers(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ICEServers []iceServerJSON `json:"iceServers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp.ICEServers
}

func TestIceHandler_StunOnly(t *testing.T) {
	cfg := &config.Config{
		ICEServers: []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}},
	}

	servers := callIce(t, NewIceHandler(cfg))

	require.Len(t, servers, 1)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, servers[0].URLs)
	assert.Empty(t, servers[0].Username)
}

func TestIceHandler_TurnCredentials(t *testing.T) {
	cfg := &config.Config{
		ICEServers: []webrtc.ICEServer{{URLs: []string{"stun:stun.example.com:3478"}}},
		ICE: config.ICEConfig{
			TURNHost:   "turn.example.com:3478",
			TURNSecret: "coturn-secret",
			TURNTTL:    time.Hour,
		},
	}

	h := NewIceHandler(cfg)
	h.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	servers := callIce(t, h)
	require.Len(t, servers, 2)

	turn := servers[1]
	assert.Equal(t, []string{
		"turn:turn.example.com:3478?transport=udp",
		"turn:turn.example.com:3478?transport=tcp",
	}, turn.URLs)
	assert.Equal(t, "1700003600", turn.Username)

	mac := hmac.New(sha1.New, []byte("coturn-secret"))
	mac.Write([]byte("1700003600"))
	assert.Equal(t, base64.StdEncoding.EncodeToString(mac.Sum(nil)), turn.Credential)
}
