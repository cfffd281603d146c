package usecase

import (
	"context"
	"log/slog"

	"github.com/qrave1/LetzTalk/internal/application/constant"
	"github.com/qrave1/LetzTalk/internal/domain/events"
	"github.com/qrave1/LetzTalk/internal/domain/runtime"
)

func (b *brokerUsecase) RelayOffer(ctx context.Context, connID string, evt events.OfferEvent) {
	b.relay(ctx, evt.To, events.TypeWebrtcOffer, events.OfferEvent{From: connID, Offer: evt.Offer})
}

func (b *brokerUsecase) RelayAnswer(ctx context.Context, connID string, evt events.AnswerEvent) {
	b.relay(ctx, evt.To, events.TypeWebrtcAnswer, events.AnswerEvent{From: connID, Answer: evt.Answer})
}

func (b *brokerUsecase) RelayIceCandidate(ctx context.Context, connID string, evt events.IceCandidateEvent) {
	b.relay(ctx, evt.To, events.TypeWebrtcIceCandidate, events.IceCandidateEvent{From: connID, Candidate: evt.Candidate})
}

// CallEnd пересылает call_end адресату и завершает пару отправителя.
// Партнер получает call_end, даже если to указывал на другое соединение.
func (b *brokerUsecase) CallEnd(ctx context.Context, connID string, evt events.TargetEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.observe()

	payload := events.FromEvent{From: connID}

	b.relayLocked(ctx, evt.To, events.TypeCallEnd, payload)

	if partnerID, ok := b.removePair(ctx, connID); ok && partnerID != evt.To {
		b.emit(partnerID, events.TypeCallEnd, payload)
	}
}

func (b *brokerUsecase) ChatMessage(ctx context.Context, connID string, evt events.ChatMessageEvent) {
	text, ok := runtime.NormalizeMessage(evt.Text)
	if !ok {
		return
	}

	sentAt := b.now().UTC()

	b.relay(ctx, evt.To, events.TypeChatMessage, events.ChatMessageEvent{
		From:   connID,
		Text:   text,
		SentAt: &sentAt,
	})
}

// ChatTyping пересылает chat_typing и chat_stop_typing под тем же именем.
func (b *brokerUsecase) ChatTyping(ctx context.Context, connID string, eventType string, evt events.TargetEvent) {
	if eventType != events.TypeChatTyping && eventType != events.TypeChatStopTyping {
		return
	}

	b.relay(ctx, evt.To, eventType, events.FromEvent{From: connID})
}

func (b *brokerUsecase) relay(ctx context.Context, to, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.relayLocked(ctx, to, eventType, data)
}

// relayLocked - доставка at-most-once. Мертвый или пустой адресат молча отбрасывается.
func (b *brokerUsecase) relayLocked(ctx context.Context, to, eventType string, data any) {
	if to == "" || !b.connRepo.IsLive(to) {
		slog.DebugContext(
			ctx,
			"relay target is not live",
			slog.String(constant.TargetConnID, to),
			slog.String(constant.EventType, eventType),
		)

		return
	}

	b.emit(to, eventType, data)
}
