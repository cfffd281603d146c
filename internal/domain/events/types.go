package events

import (
	"encoding/json"
	"time"

	"github.com/qrave1/LetzTalk/internal/domain/runtime"
)

// Входящие события
const (
	TypeFindMatch          = "find_match"
	TypeSkip               = "skip"
	TypeWebrtcOffer        = "webrtc_offer"
	TypeWebrtcAnswer       = "webrtc_answer"
	TypeWebrtcIceCandidate = "webrtc_ice_candidate"
	TypeCallEnd            = "call_end"
	TypeChatMessage        = "chat_message"
	TypeChatTyping         = "chat_typing"
	TypeChatStopTyping     = "chat_stop_typing"
	TypeCreateRoom         = "create_room"
	TypeJoinRoom           = "join_room"
	TypeLeaveRoom          = "leave_room"
	TypeRoomMessage        = "room_message"
	TypePing               = "ping"
)

// Исходящие события
const (
	TypeConnected           = "connected"
	TypeMatched             = "matched"
	TypePartnerSkipped      = "partner_skipped"
	TypePartnerDisconnected = "partner_disconnected"
	TypeRoomJoined          = "room_joined"
	TypeRoomUpdated         = "room_updated"
	TypeRoomError           = "room_error"
	TypePong                = "pong"
	TypeError               = "error"
	TypeRateLimited         = "rate_limited"
)

// Message - общее событие
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage упаковывает data в конверт. При data == nil конверт без payload
func NewMessage(eventType string, data any) (Message, error) {
	msg := Message{Type: eventType}
	if data == nil {
		return msg, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}

	msg.Data = raw

	return msg, nil
}

// TargetEvent - входящее событие, адресованное конкретному соединению (call_end, chat_typing)
type TargetEvent struct {
	To string `json:"to"`
}

// OfferEvent - SDP offer. Payload пересылается как есть
type OfferEvent struct {
	To    string          `json:"to,omitempty"`
	From  string          `json:"from,omitempty"`
	Offer json.RawMessage `json:"offer"`
}

type AnswerEvent struct {
	To     string          `json:"to,omitempty"`
	From   string          `json:"from,omitempty"`
	Answer json.RawMessage `json:"answer"`
}

type IceCandidateEvent struct {
	To        string          `json:"to,omitempty"`
	From      string          `json:"from,omitempty"`
	Candidate json.RawMessage `json:"candidate"`
}

// FromEvent - исходящее событие без payload, только отправитель
type FromEvent struct {
	From string `json:"from"`
}

type ChatMessageEvent struct {
	To     string     `json:"to,omitempty"`
	From   string     `json:"from,omitempty"`
	Text   string     `json:"text"`
	SentAt *time.Time `json:"sentAt,omitempty"`
}

type ConnectedEvent struct {
	ConnectionID string `json:"connectionId"`
}

type MatchedEvent struct {
	RoomID    string `json:"roomId"`
	PartnerID string `json:"partnerId"`
}

type CreateRoomEvent struct {
	RoomName    string `json:"roomName"`
	DisplayName string `json:"displayName"`
}

type JoinRoomEvent struct {
	RoomCode    string `json:"roomCode"`
	DisplayName string `json:"displayName"`
}

// RoomEvent - room_joined и room_updated
type RoomEvent struct {
	Room runtime.RoomSnapshot `json:"room"`
}

type RoomMessageEvent struct {
	Text string `json:"text"`
}

type RoomChatEvent struct {
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sentAt"`
}

// ErrorEvent - room_error и error, отправляются только инициатору
type ErrorEvent struct {
	Message string `json:"message"`
}
