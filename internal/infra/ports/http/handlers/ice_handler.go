package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pion/webrtc/v4"

	"github.com/qrave1/LetzTalk/internal/application/config"
	"github.com/qrave1/LetzTalk/internal/infra/ports/http/dto"
)

type IceHandler struct {
	cfg *config.Config
	now func() time.Time
}

func NewIceHandler(cfg *config.Config) *IceHandler {
	return &IceHandler{cfg: cfg, now: time.Now}
}

// IceServers отдает STUN сервера и, если настроен coturn, временные TURN креды.
func (h *IceHandler) IceServers(c echo.Context) error {
	servers := make([]webrtc.ICEServer, 0, len(h.cfg.ICEServers)+1)
	servers = append(servers, h.cfg.ICEServers...)

	if h.cfg.ICE.TURNEnabled() {
		servers = append(servers, h.turnServer())
	}

	return c.JSON(http.StatusOK, dto.IceServersResponse{ICEServers: servers})
}

// turnServer - креды по схеме TURN REST API: username = время истечения,
// credential = base64(HMAC-SHA1(static-auth-secret, username)).
func (h *IceHandler) turnServer() webrtc.ICEServer {
	username := fmt.Sprintf("%d", h.now().Add(h.cfg.ICE.TURNTTL).Unix())

	mac := hmac.New(sha1.New, []byte(h.cfg.ICE.TURNSecret))
	mac.Write([]byte(username))
	password := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return webrtc.ICEServer{
		URLs: []string{
			fmt.Sprintf("turn:%s?transport=udp", h.cfg.ICE.TURNHost),
			fmt.Sprintf("turn:%s?transport=tcp", h.cfg.ICE.TURNHost),
		},
		Username:   username,
		Credential: password,
	}
}
