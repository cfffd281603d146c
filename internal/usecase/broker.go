package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/LetzTalk/internal/application/constant"
	"github.com/qrave1/LetzTalk/internal/application/metric"
	"github.com/qrave1/LetzTalk/internal/domain/events"
	"github.com/qrave1/LetzTalk/internal/domain/output"
	"github.com/qrave1/LetzTalk/internal/domain/runtime"
	"github.com/qrave1/LetzTalk/internal/infra/adapters/memory"
)

// BrokerUsecase - единая точка входа для событий websocket.
// Каждый метод выполняется целиком под одной блокировкой брокера.
type BrokerUsecase interface {
	Connect(ctx context.Context, conn *runtime.Connection)
	Disconnect(ctx context.Context, connID string)
	Ping(ctx context.Context, connID string)

	FindMatch(ctx context.Context, connID string)
	Skip(ctx context.Context, connID string)

	RelayOffer(ctx context.Context, connID string, evt events.OfferEvent)
	RelayAnswer(ctx context.Context, connID string, evt events.AnswerEvent)
	RelayIceCandidate(ctx context.Context, connID string, evt events.IceCandidateEvent)
	CallEnd(ctx context.Context, connID string, evt events.TargetEvent)
	ChatMessage(ctx context.Context, connID string, evt events.ChatMessageEvent)
	ChatTyping(ctx context.Context, connID string, eventType string, evt events.TargetEvent)

	CreateRoom(ctx context.Context, connID string, evt events.CreateRoomEvent)
	JoinRoom(ctx context.Context, connID string, evt events.JoinRoomEvent)
	LeaveRoom(ctx context.Context, connID string)
	RoomMessage(ctx context.Context, connID string, evt events.RoomMessageEvent)

	Stats() output.BrokerStats
	IdentityOf(connID string) (uuid.UUID, bool)
}

type brokerUsecase struct {
	connRepo memory.ConnectionRepository
	queue    memory.MatchQueue
	pairRepo memory.PairRoomRepository
	roomRepo memory.SocialRoomRepository

	now func() time.Time

	mu sync.Mutex
}

func NewBrokerUsecase(
	connRepo memory.ConnectionRepository,
	queue memory.MatchQueue,
	pairRepo memory.PairRoomRepository,
	roomRepo memory.SocialRoomRepository,
) BrokerUsecase {
	return &brokerUsecase{
		connRepo: connRepo,
		queue:    queue,
		pairRepo: pairRepo,
		roomRepo: roomRepo,
		now:      time.Now,
	}
}

func (b *brokerUsecase) Connect(ctx context.Context, conn *runtime.Connection) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.connRepo.Add(conn)
	b.emit(conn.ID, events.TypeConnected, events.ConnectedEvent{ConnectionID: conn.ID})

	slog.InfoContext(
		ctx,
		"connection opened",
		slog.String(constant.ConnID, conn.ID),
		slog.Bool("guest", !conn.HasIdentity()),
	)
}

// Disconnect - полный каскад очистки: очередь, пара, комната.
func (b *brokerUsecase) Disconnect(ctx context.Context, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.observe()

	b.queue.Dequeue(connID)
	b.leavePair(ctx, connID, events.TypePartnerDisconnected)
	b.leaveRoom(ctx, connID)

	if conn, ok := b.connRepo.Remove(connID); ok {
		conn.Close()
	}

	slog.InfoContext(ctx, "connection closed", slog.String(constant.ConnID, connID))
}

func (b *brokerUsecase) Ping(_ context.Context, connID string) {
	b.emit(connID, events.TypePong, nil)
}

func (b *brokerUsecase) Stats() output.BrokerStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return output.BrokerStats{
		WaitingCount: b.queue.Len(),
		ActiveRooms:  b.pairRepo.Len(),
		SocialRooms:  b.roomRepo.Len(),
		Connections:  b.connRepo.Count(),
	}
}

func (b *brokerUsecase) IdentityOf(connID string) (uuid.UUID, bool) {
	return b.connRepo.Identity(connID)
}

// leaveAll выводит соединение из любой конструкции брокера.
// Партнер по паре получает partner_skipped. Вызывается под b.mu.
func (b *brokerUsecase) leaveAll(ctx context.Context, connID string) {
	b.queue.Dequeue(connID)
	b.leavePair(ctx, connID, events.TypePartnerSkipped)
	b.leaveRoom(ctx, connID)
	b.connRepo.SetMembership(connID, runtime.MembershipNone)
}

// emit отправляет событие одному соединению. Недоставленные события молча отбрасываются.
func (b *brokerUsecase) emit(connID, eventType string, data any) bool {
	msg, err := events.NewMessage(eventType, data)
	if err != nil {
		slog.Error(
			"build outbound event",
			slog.Any(constant.Error, err),
			slog.String(constant.EventType, eventType),
		)

		return false
	}

	return b.connRepo.Write(connID, msg)
}

func (b *brokerUsecase) observe() {
	metric.SetBrokerState(b.queue.Len(), b.pairRepo.Len(), b.roomRepo.Len())
}
