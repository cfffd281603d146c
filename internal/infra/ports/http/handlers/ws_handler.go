package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/qrave1/LetzTalk/internal/application/config"
	"github.com/qrave1/LetzTalk/internal/application/constant"
	"github.com/qrave1/LetzTalk/internal/application/metric"
	"github.com/qrave1/LetzTalk/internal/domain/events"
	"github.com/qrave1/LetzTalk/internal/domain/runtime"
	"github.com/qrave1/LetzTalk/internal/infra/appctx"
	"github.com/qrave1/LetzTalk/internal/usecase"
)

var errUnknownEvent = errors.New("unknown event type")

type WebSocketHandler struct {
	cfg      config.WebSocketConfig
	upgrader *websocket.Upgrader

	broker usecase.BrokerUsecase
}

func NewWebSocketHandler(cfg *config.Config, broker usecase.BrokerUsecase) *WebSocketHandler {
	return &WebSocketHandler{
		cfg: cfg.WS,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		broker: broker,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return nil
	}
	defer ws.Close()

	// uuid.Nil для гостей
	userID, _ := appctx.UserID(c.Request().Context())

	conn := runtime.NewConnection(uuid.NewString(), userID, h.cfg.SendBuffer)
	ctx := appctx.WithConnID(c.Request().Context(), conn.ID)

	metric.IncrementWSActiveConnections()
	defer metric.DecrementWSActiveConnections()

	ws.SetReadLimit(h.cfg.ReadLimit)

	if err = ws.SetReadDeadline(time.Now().Add(h.cfg.PongWait)); err != nil {
		return nil
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	h.broker.Connect(ctx, conn)

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		h.writePump(ctx, ws, conn)
	}()

	h.readLoop(ctx, ws, conn)

	// Disconnect закрывает буфер соединения, write pump дописывает его и выходит
	h.broker.Disconnect(ctx, conn.ID)
	<-pumpDone

	return nil
}

// writePump - единственный писатель в сокет: события из буфера и ping.
func (h *WebSocketHandler) writePump(ctx context.Context, ws *websocket.Conn, conn *runtime.Connection) {
	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-conn.Send():
			_ = ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))

			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				slog.DebugContext(ctx, "websocket write", slog.Any(constant.Error, err), slog.String(constant.ConnID, conn.ID))
				// Разблокирует readLoop
				_ = ws.Close()
				return
			}

		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))

			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.DebugContext(ctx, "ping failed", slog.Any(constant.Error, err), slog.String(constant.ConnID, conn.ID))
				_ = ws.Close()
				return
			}
		}
	}
}

// readLoop обрабатывает события соединения строго по очереди.
func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, conn *runtime.Connection) {
	limiter := rate.NewLimiter(rate.Limit(h.cfg.EventRate), h.cfg.EventBurst)

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			h.handleWebsocketError(ctx, err)
			return
		}

		if !limiter.Allow() {
			metric.IncrementDropped("rate_limited")
			h.reply(conn, events.TypeRateLimited, nil)

			continue
		}

		var msg events.Message

		if err = json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
			slog.DebugContext(ctx, "unmarshal websocket message", slog.Any(constant.Error, err), slog.String(constant.ConnID, conn.ID))
			h.reply(conn, events.TypeError, events.ErrorEvent{Message: "malformed event"})

			continue
		}

		if err = h.handleMessage(ctx, conn.ID, &msg); err != nil {
			slog.DebugContext(
				ctx,
				"handle message",
				slog.Any(constant.Error, err),
				slog.String(constant.ConnID, conn.ID),
				slog.String(constant.EventType, msg.Type),
			)

			text := "malformed event payload"
			if errors.Is(err, errUnknownEvent) {
				text = errUnknownEvent.Error()
			}

			h.reply(conn, events.TypeError, events.ErrorEvent{Message: text})
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, connID string, msg *events.Message) error {
	switch msg.Type {
	case events.TypeFindMatch:
		h.broker.FindMatch(ctx, connID)

	case events.TypeSkip:
		h.broker.Skip(ctx, connID)

	case events.TypeWebrtcOffer:
		evt, err := decode[events.OfferEvent](msg.Data)
		if err != nil {
			return fmt.Errorf("unmarshal offer: %w", err)
		}

		h.broker.RelayOffer(ctx, connID, evt)

	case events.TypeWebrtcAnswer:
		evt, err := decode[events.AnswerEvent](msg.Data)
		if err != nil {
			return fmt.Errorf("unmarshal answer: %w", err)
		}

		h.broker.RelayAnswer(ctx, connID, evt)

	case events.TypeWebrtcIceCandidate:
		evt, err := decode[events.IceCandidateEvent](msg.Data)
		if err != nil {
			return fmt.Errorf("unmarshal ice candidate: %w", err)
		}

		h.broker.RelayIceCandidate(ctx, connID, evt)

	case events.TypeCallEnd:
		evt, err := decode[events.TargetEvent](msg.Data)
		if err != nil {
			return fmt.Errorf("unmarshal call end: %w", err)
		}

		h.broker.CallEnd(ctx, connID, evt)

	case events.TypeChatMessage:
		evt, err := decode[events.ChatMessageEvent](msg.Data)
		if err != nil {
			return fmt.Errorf("unmarshal chat message: %w", err)
		}

		h.broker.ChatMessage(ctx, connID, evt)

	case events.TypeChatTyping, events.TypeChatStopTyping:
		evt, err := decode[events.TargetEvent](msg.Data)
		if err != nil {
			return fmt.Errorf("unmarshal %s: %w", msg.Type, err)
		}

		h.broker.ChatTyping(ctx, connID, msg.Type, evt)

	case events.TypeCreateRoom:
		evt, err := decode[events.CreateRoomEvent](msg.Data)
		if err != nil {
			return fmt.Errorf("unmarshal create room: %w", err)
		}

		h.broker.CreateRoom(ctx, connID, evt)

	case events.TypeJoinRoom:
		evt, err := decode[events.JoinRoomEvent](msg.Data)
		if err != nil {
			return fmt.Errorf("unmarshal join room: %w", err)
		}

		h.broker.JoinRoom(ctx, connID, evt)

	case events.TypeLeaveRoom:
		h.broker.LeaveRoom(ctx, connID)

	case events.TypeRoomMessage:
		evt, err := decode[events.RoomMessageEvent](msg.Data)
		if err != nil {
			return fmt.Errorf("unmarshal room message: %w", err)
		}

		h.broker.RoomMessage(ctx, connID, evt)

	case events.TypePing:
		h.broker.Ping(ctx, connID)

	default:
		return errUnknownEvent
	}

	metric.IncrementEvent(msg.Type)

	return nil
}

// reply пишет событие только этому соединению, минуя брокер.
func (h *WebSocketHandler) reply(conn *runtime.Connection, eventType string, data any) {
	msg, err := events.NewMessage(eventType, data)
	if err != nil {
		return
	}

	frame, err := json.Marshal(msg)
	if err != nil {
		return
	}

	_ = conn.TrySend(frame)
}

func (h *WebSocketHandler) handleWebsocketError(ctx context.Context, err error) {
	connID, _ := appctx.ConnID(ctx)

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
			slog.InfoContext(ctx, "user disconnected from websocket", slog.String(constant.ConnID, connID))
		default:
			slog.WarnContext(
				ctx,
				"websocket close error",
				slog.Int("code", closeErr.Code),
				slog.String(constant.ConnID, connID),
			)
		}

		return
	}

	slog.WarnContext(
		ctx,
		"websocket read",
		slog.Any(constant.Error, err),
		slog.String(constant.ConnID, connID),
	)
}

// decode разбирает payload события. Пустой payload дает нулевое значение.
func decode[T any](data json.RawMessage) (T, error) {
	var v T

	if len(data) == 0 || string(data) == "null" {
		return v, nil
	}

	err := json.Unmarshal(data, &v)

	return v, err
}
