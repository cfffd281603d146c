package memory

import (
	"sync"

	"github.com/qrave1/LetzTalk/internal/domain/runtime"
)

// PairRoomRepository хранит парные сессии и индекс connID -> roomID
type PairRoomRepository interface {
	Create(room *runtime.PairRoom) error

	PartnerOf(connID string) (string, bool)
	RoomOf(connID string) (runtime.PairRoom, bool)

	// RemoveRoomOf удаляет сессию, в которой состоит connID, и возвращает ее id
	RemoveRoomOf(connID string) (string, bool)

	Len() int
}

type pairRoomRepository struct {
	rooms  map[string]*runtime.PairRoom
	byConn map[string]string

	mu sync.RWMutex
}

func NewPairRoomRepository() PairRoomRepository {
	return &pairRoomRepository{
		rooms:  make(map[string]*runtime.PairRoom),
		byConn: make(map[string]string),
	}
}

func (r *pairRoomRepository) Create(room *runtime.PairRoom) error {
	if room.MemberA == room.MemberB {
		return runtime.ErrSelfPair
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byConn[room.MemberA]; ok {
		return runtime.ErrAlreadyPaired
	}

	if _, ok := r.byConn[room.MemberB]; ok {
		return runtime.ErrAlreadyPaired
	}

	r.rooms[room.ID] = room
	r.byConn[room.MemberA] = room.ID
	r.byConn[room.MemberB] = room.ID

	return nil
}

func (r *pairRoomRepository) PartnerOf(connID string) (string, bool) {
	room, ok := r.RoomOf(connID)
	if !ok {
		return "", false
	}

	return room.PartnerOf(connID)
}

func (r *pairRoomRepository) RoomOf(connID string) (runtime.PairRoom, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomID, ok := r.byConn[connID]
	if !ok {
		return runtime.PairRoom{}, false
	}

	return *r.rooms[roomID], true
}

func (r *pairRoomRepository) RemoveRoomOf(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.byConn[connID]
	if !ok {
		return "", false
	}

	room := r.rooms[roomID]
	delete(r.byConn, room.MemberA)
	delete(r.byConn, room.MemberB)
	delete(r.rooms, roomID)

	return roomID, true
}

func (r *pairRoomRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
