package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/qrave1/LetzTalk/internal/application/constant"
	"github.com/qrave1/LetzTalk/internal/domain/events"
	"github.com/qrave1/LetzTalk/internal/domain/runtime"
)

func (b *brokerUsecase) CreateRoom(ctx context.Context, connID string, evt events.CreateRoomEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.observe()

	if !b.connRepo.IsLive(connID) {
		return
	}

	// код подбирается до выхода из текущей пары/комнаты: при исчерпании пространства кодов состояние не меняется
	code, err := b.roomRepo.NextCode()
	if err != nil {
		slog.WarnContext(ctx, "create room", slog.Any(constant.Error, err), slog.String(constant.ConnID, connID))
		b.roomError(connID, err)

		return
	}

	b.leaveAll(ctx, connID)

	room, err := b.roomRepo.Create(
		code,
		runtime.NormalizeRoomName(evt.RoomName),
		connID,
		runtime.NormalizeDisplayName(evt.DisplayName),
	)
	if err != nil {
		slog.WarnContext(ctx, "create room", slog.Any(constant.Error, err), slog.String(constant.ConnID, connID))
		b.roomError(connID, err)

		return
	}

	b.connRepo.SetMembership(connID, runtime.MembershipInRoom)
	b.emit(connID, events.TypeRoomJoined, events.RoomEvent{Room: room.Snapshot()})

	slog.InfoContext(ctx, "room created", slog.String(constant.RoomCode, room.Code), slog.String(constant.ConnID, connID))
}

// JoinRoom при промахе сообщает room_error только инициатору и не трогает его текущее состояние.
func (b *brokerUsecase) JoinRoom(ctx context.Context, connID string, evt events.JoinRoomEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.observe()

	if !b.connRepo.IsLive(connID) {
		return
	}

	code := strings.TrimSpace(evt.RoomCode)
	if err := runtime.ValidateRoomCode(code); err != nil {
		b.roomError(connID, err)
		return
	}

	if current, ok := b.roomRepo.RoomOf(connID); ok && current.Code == code {
		b.emit(connID, events.TypeRoomJoined, events.RoomEvent{Room: current.Snapshot()})
		return
	}

	if _, ok := b.roomRepo.Get(code); !ok {
		b.roomError(connID, runtime.ErrRoomNotFound)
		return
	}

	b.leaveAll(ctx, connID)

	room, err := b.roomRepo.AddMember(code, connID, runtime.NormalizeDisplayName(evt.DisplayName))
	if err != nil {
		slog.WarnContext(ctx, "join room", slog.Any(constant.Error, err), slog.String(constant.RoomCode, code))
		b.roomError(connID, err)

		return
	}

	b.connRepo.SetMembership(connID, runtime.MembershipInRoom)

	snapshot := room.Snapshot()
	b.emit(connID, events.TypeRoomJoined, events.RoomEvent{Room: snapshot})
	b.broadcast(room, events.TypeRoomUpdated, events.RoomEvent{Room: snapshot})

	slog.InfoContext(ctx, "room joined", slog.String(constant.RoomCode, code), slog.String(constant.ConnID, connID))
}

func (b *brokerUsecase) LeaveRoom(ctx context.Context, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.observe()

	b.leaveRoom(ctx, connID)
}

func (b *brokerUsecase) RoomMessage(ctx context.Context, connID string, evt events.RoomMessageEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	text, ok := runtime.NormalizeMessage(evt.Text)
	if !ok {
		return
	}

	room, ok := b.roomRepo.RoomOf(connID)
	if !ok {
		return
	}

	senderName, _ := room.DisplayNameOf(connID)

	b.broadcast(room, events.TypeRoomMessage, events.RoomChatEvent{
		SenderName: senderName,
		Text:       text,
		SentAt:     b.now().UTC(),
	})
}

// leaveRoom убирает соединение из комнаты. Оставшиеся получают room_updated,
// пустая комната удаляется без рассылки. Не в комнате - no-op.
func (b *brokerUsecase) leaveRoom(ctx context.Context, connID string) {
	room, deleted, err := b.roomRepo.RemoveMember(connID)
	if err != nil {
		return
	}

	b.connRepo.SetMembership(connID, runtime.MembershipNone)

	if deleted {
		slog.InfoContext(ctx, "room deleted", slog.String(constant.RoomCode, room.Code))
		return
	}

	b.broadcast(room, events.TypeRoomUpdated, events.RoomEvent{Room: room.Snapshot()})
}

func (b *brokerUsecase) broadcast(room *runtime.SocialRoom, eventType string, data any) {
	for _, memberID := range room.MemberIDs() {
		b.emit(memberID, eventType, data)
	}
}

func (b *brokerUsecase) roomError(connID string, err error) {
	b.emit(connID, events.TypeRoomError, events.ErrorEvent{Message: roomErrorMessage(err)})
}

func roomErrorMessage(err error) string {
	switch {
	case errors.Is(err, runtime.ErrInvalidRoomCode):
		return "Invalid room code"
	case errors.Is(err, runtime.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, runtime.ErrCodeSpaceExhausted):
		return "No free room codes, try again later"
	default:
		return "Unable to join room"
	}
}
