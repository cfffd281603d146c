package runtime

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Membership - в какой конструкции брокера сейчас находится соединение
type Membership string

const (
	MembershipNone   Membership = "none"
	MembershipQueued Membership = "queued"
	MembershipPaired Membership = "paired"
	MembershipInRoom Membership = "in-room"
)

var (
	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
)

// Connection - живое websocket соединение пользователя.
// Сокетом владеет транспорт, брокер пишет только в буфер send.
type Connection struct {
	ID string
	// UserID - uuid.Nil для гостей
	UserID     uuid.UUID
	Membership Membership

	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func NewConnection(id string, userID uuid.UUID, buffer int) *Connection {
	if buffer <= 0 {
		buffer = 1
	}

	return &Connection{
		ID:         id,
		UserID:     userID,
		Membership: MembershipNone,
		send:       make(chan []byte, buffer),
	}
}

func (c *Connection) HasIdentity() bool {
	return c.UserID != uuid.Nil
}

// Send - исходящие фреймы, их вычитывает write pump
func (c *Connection) Send() <-chan []byte {
	return c.send
}

// TrySend не блокируется: при полном буфере фрейм отбрасывается
func (c *Connection) TrySend(frame []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.send <- frame:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.send)
}
