package usecase

import (
	"context"
	"log/slog"

	"github.com/qrave1/LetzTalk/internal/application/constant"
	"github.com/qrave1/LetzTalk/internal/application/metric"
	"github.com/qrave1/LetzTalk/internal/domain/events"
	"github.com/qrave1/LetzTalk/internal/domain/runtime"
)

// FindMatch ставит соединение в очередь и сразу пытается собрать пару.
// Повторный find_match в очереди или в паре ничего не делает.
func (b *brokerUsecase) FindMatch(ctx context.Context, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.observe()

	if !b.connRepo.IsLive(connID) {
		return
	}

	switch b.connRepo.Membership(connID) {
	case runtime.MembershipQueued, runtime.MembershipPaired:
		return
	case runtime.MembershipInRoom:
		b.leaveRoom(ctx, connID)
	}

	b.queue.Enqueue(connID)
	b.connRepo.SetMembership(connID, runtime.MembershipQueued)

	b.tryPair(ctx)
}

// Skip выходит из очереди и из пары. Партнер получает partner_skipped и в очередь не возвращается.
func (b *brokerUsecase) Skip(ctx context.Context, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.observe()

	if b.queue.Dequeue(connID) {
		b.connRepo.SetMembership(connID, runtime.MembershipNone)
	}

	b.leavePair(ctx, connID, events.TypePartnerSkipped)
}

func (b *brokerUsecase) tryPair(ctx context.Context) {
	first, second, ok := b.queue.TryPair()
	if !ok {
		return
	}

	room, err := runtime.NewPairRoom(first, second)
	if err == nil {
		err = b.pairRepo.Create(room)
	}

	if err != nil {
		// Очередь и пары взаимоисключающие, сюда попадать не должны
		slog.ErrorContext(
			ctx,
			"create pair room",
			slog.Any(constant.Error, err),
			slog.String(constant.ConnID, first),
			slog.String(constant.PartnerID, second),
		)

		b.connRepo.SetMembership(first, runtime.MembershipNone)
		b.connRepo.SetMembership(second, runtime.MembershipNone)

		return
	}

	b.connRepo.SetMembership(first, runtime.MembershipPaired)
	b.connRepo.SetMembership(second, runtime.MembershipPaired)

	b.emit(first, events.TypeMatched, events.MatchedEvent{RoomID: room.ID, PartnerID: second})
	b.emit(second, events.TypeMatched, events.MatchedEvent{RoomID: room.ID, PartnerID: first})

	metric.IncrementMatches()

	slog.InfoContext(
		ctx,
		"pair matched",
		slog.String(constant.RoomID, room.ID),
		slog.String(constant.ConnID, first),
		slog.String(constant.PartnerID, second),
	)
}

// removePair удаляет пару соединения и возвращает обоих в idle. Никого не уведомляет.
func (b *brokerUsecase) removePair(ctx context.Context, connID string) (string, bool) {
	partnerID, ok := b.pairRepo.PartnerOf(connID)
	if !ok {
		return "", false
	}

	roomID, _ := b.pairRepo.RemoveRoomOf(connID)

	b.connRepo.SetMembership(connID, runtime.MembershipNone)
	b.connRepo.SetMembership(partnerID, runtime.MembershipNone)

	slog.DebugContext(
		ctx,
		"pair room removed",
		slog.String(constant.RoomID, roomID),
		slog.String(constant.ConnID, connID),
		slog.String(constant.PartnerID, partnerID),
	)

	return partnerID, true
}

// leavePair удаляет пару и отправляет партнеру notifyType.
func (b *brokerUsecase) leavePair(ctx context.Context, connID, notifyType string) {
	partnerID, ok := b.removePair(ctx, connID)
	if !ok {
		return
	}

	b.emit(partnerID, notifyType, nil)
}
