package runtime

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxDisplayNameLen = 32
	MaxRoomNameLen    = 48
	MaxMessageLen     = 2000

	DefaultDisplayName = "Guest"
	DefaultRoomName    = "Room"

	MinRoomCodeLen = 4
	MaxRoomCodeLen = 6
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrInvalidRoomCode    = errors.New("invalid room code")
	ErrCodeSpaceExhausted = errors.New("room code space exhausted")
	ErrNotInRoom          = errors.New("connection is not in a room")
	ErrAlreadyInRoom      = errors.New("connection already in a room")
	ErrRoomCodeTaken      = errors.New("room code already taken")
)

type Member struct {
	ConnectionID string
	DisplayName  string
}

// SocialRoom - именованная комната с кодом, хостом и списком участников в порядке входа
type SocialRoom struct {
	Code      string
	Name      string
	HostID    string
	Members   []Member
	CreatedAt time.Time
}

// RoomSnapshot - то, что клиент получает в room_joined / room_updated
type RoomSnapshot struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	HostID  string   `json:"hostId"`
	Members []string `json:"members"`
}

func (r *SocialRoom) IndexOf(connID string) int {
	for i, m := range r.Members {
		if m.ConnectionID == connID {
			return i
		}
	}

	return -1
}

func (r *SocialRoom) DisplayNameOf(connID string) (string, bool) {
	if i := r.IndexOf(connID); i >= 0 {
		return r.Members[i].DisplayName, true
	}

	return "", false
}

func (r *SocialRoom) MemberIDs() []string {
	ids := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		ids = append(ids, m.ConnectionID)
	}

	return ids
}

func (r *SocialRoom) Snapshot() RoomSnapshot {
	names := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		names = append(names, m.DisplayName)
	}

	return RoomSnapshot{
		Code:    r.Code,
		Name:    r.Name,
		HostID:  r.HostID,
		Members: names,
	}
}

func (r *SocialRoom) Clone() *SocialRoom {
	cp := *r
	cp.Members = append([]Member(nil), r.Members...)

	return &cp
}

// NormalizeDisplayName обрезает пробелы и длину, пустое имя заменяется на DefaultDisplayName
func NormalizeDisplayName(name string) string {
	return normalize(name, DefaultDisplayName, MaxDisplayNameLen)
}

func NormalizeRoomName(name string) string {
	return normalize(name, DefaultRoomName, MaxRoomNameLen)
}

// NormalizeMessage возвращает обрезанный текст, false - сообщение надо выбросить
func NormalizeMessage(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > MaxMessageLen {
		return "", false
	}

	return text, true
}

func ValidateRoomCode(code string) error {
	if len(code) < MinRoomCodeLen || len(code) > MaxRoomCodeLen {
		return ErrInvalidRoomCode
	}

	for _, r := range code {
		if r < '0' || r > '9' {
			return ErrInvalidRoomCode
		}
	}

	return nil
}

func normalize(s, fallback string, limit int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}

	if utf8.RuneCountInString(s) > limit {
		s = string([]rune(s)[:limit])
	}

	return s
}
