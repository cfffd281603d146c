package dto

import (
	"time"

	"github.com/pion/webrtc/v4"
)

type HealthResponse struct {
	Status  string    `json:"status"`
	Service string    `json:"service"`
	Time    time.Time `json:"time"`
}

type IceServersResponse struct {
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}
