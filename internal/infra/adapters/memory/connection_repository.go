package memory

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/qrave1/LetzTalk/internal/application/constant"
	"github.com/qrave1/LetzTalk/internal/application/metric"
	"github.com/qrave1/LetzTalk/internal/domain/runtime"
)

// ConnectionRepository интерфейс реестра живых соединений.
// Авторитетен для очистки при дисконнекте.
type ConnectionRepository interface {
	Add(conn *runtime.Connection)
	Remove(connID string) (*runtime.Connection, bool)

	IsLive(connID string) bool
	Identity(connID string) (uuid.UUID, bool)

	Membership(connID string) runtime.Membership
	SetMembership(connID string, membership runtime.Membership)

	// Write сериализует payload и кладет в буфер соединения, не блокируясь.
	// Возвращает false, если событие не доставлено.
	Write(connID string, payload any) bool

	Count() int
}

type connectionRepository struct {
	conns map[string]*runtime.Connection

	mu sync.RWMutex
}

func NewConnectionRepository() ConnectionRepository {
	return &connectionRepository{
		conns: make(map[string]*runtime.Connection, 64),
	}
}

func (r *connectionRepository) Add(conn *runtime.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[conn.ID] = conn
}

func (r *connectionRepository) Remove(connID string) (*runtime.Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if ok {
		delete(r.conns, connID)
	}

	return conn, ok
}

func (r *connectionRepository) IsLive(connID string) bool {
	_, ok := r.get(connID)
	return ok
}

func (r *connectionRepository) Identity(connID string) (uuid.UUID, bool) {
	conn, ok := r.get(connID)
	if !ok || !conn.HasIdentity() {
		return uuid.Nil, false
	}

	return conn.UserID, true
}

func (r *connectionRepository) Membership(connID string) runtime.Membership {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[connID]
	if !ok {
		return runtime.MembershipNone
	}

	return conn.Membership
}

func (r *connectionRepository) SetMembership(connID string, membership runtime.Membership) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.conns[connID]; ok {
		conn.Membership = membership
	}
}

func (r *connectionRepository) Write(connID string, payload any) bool {
	conn, ok := r.get(connID)
	if !ok {
		metric.IncrementDropped("offline")
		slog.Debug("write to offline connection", slog.String(constant.ConnID, connID))
		return false
	}

	frame, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal outbound event", slog.Any(constant.Error, err), slog.String(constant.ConnID, connID))
		return false
	}

	if err = conn.TrySend(frame); err != nil {
		reason := "closed"
		if errors.Is(err, runtime.ErrBackpressure) {
			reason = "backpressure"
		}

		metric.IncrementDropped(reason)
		slog.Warn("drop outbound event", slog.Any(constant.Error, err), slog.String(constant.ConnID, connID))

		return false
	}

	return true
}

func (r *connectionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

func (r *connectionRepository) get(connID string) (*runtime.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[connID]
	return conn, ok
}
