package memory

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/qrave1/LetzTalk/internal/domain/runtime"
)

// codeDigits - пространства кодов комнат. Следующее используется, когда предыдущее забито.
var codeDigits = []int{4, 6}

// SocialRoomRepository реестр комнат по коду.
// Наружу отдаются только копии комнат.
type SocialRoomRepository interface {
	// NextCode подбирает свободный код. Код не резервируется: между NextCode и Create
	// реестр меняет только вызывающий (брокер держит свой mutex).
	NextCode() (string, error)

	// Create создает комнату с хостом в качестве единственного участника
	Create(code, name, hostID, hostName string) (*runtime.SocialRoom, error)
	Get(code string) (*runtime.SocialRoom, bool)
	RoomOf(connID string) (*runtime.SocialRoom, bool)

	AddMember(code, connID, displayName string) (*runtime.SocialRoom, error)

	// RemoveMember убирает участника, переназначает хоста и удаляет пустую комнату.
	// deleted=true означает, что комната удалена.
	RemoveMember(connID string) (room *runtime.SocialRoom, deleted bool, err error)

	Len() int
}

type socialRoomRepository struct {
	rooms  map[string]*runtime.SocialRoom
	byConn map[string]string

	maxAttempts int
	intN        func(n int) int

	mu sync.RWMutex
}

func NewSocialRoomRepository(maxAttempts int) SocialRoomRepository {
	return &socialRoomRepository{
		rooms:       make(map[string]*runtime.SocialRoom),
		byConn:      make(map[string]string),
		maxAttempts: maxAttempts,
		intN:        rand.IntN,
	}
}

func (r *socialRoomRepository) NextCode() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.generateCode()
}

func (r *socialRoomRepository) Create(code, name, hostID, hostName string) (*runtime.SocialRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := runtime.ValidateRoomCode(code); err != nil {
		return nil, err
	}

	if _, ok := r.byConn[hostID]; ok {
		return nil, runtime.ErrAlreadyInRoom
	}

	if _, taken := r.rooms[code]; taken {
		return nil, runtime.ErrRoomCodeTaken
	}

	room := &runtime.SocialRoom{
		Code:      code,
		Name:      name,
		HostID:    hostID,
		Members:   []runtime.Member{{ConnectionID: hostID, DisplayName: hostName}},
		CreatedAt: time.Now(),
	}

	r.rooms[code] = room
	r.byConn[hostID] = code

	return room.Clone(), nil
}

func (r *socialRoomRepository) Get(code string) (*runtime.SocialRoom, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, false
	}

	return room.Clone(), true
}

func (r *socialRoomRepository) RoomOf(connID string) (*runtime.SocialRoom, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code, ok := r.byConn[connID]
	if !ok {
		return nil, false
	}

	return r.rooms[code].Clone(), true
}

func (r *socialRoomRepository) AddMember(code, connID, displayName string) (*runtime.SocialRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, runtime.ErrRoomNotFound
	}

	if _, ok = r.byConn[connID]; ok {
		return nil, runtime.ErrAlreadyInRoom
	}

	room.Members = append(room.Members, runtime.Member{ConnectionID: connID, DisplayName: displayName})
	r.byConn[connID] = code

	return room.Clone(), nil
}

func (r *socialRoomRepository) RemoveMember(connID string) (*runtime.SocialRoom, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.byConn[connID]
	if !ok {
		return nil, false, runtime.ErrNotInRoom
	}

	delete(r.byConn, connID)

	room := r.rooms[code]
	if i := room.IndexOf(connID); i >= 0 {
		room.Members = append(room.Members[:i], room.Members[i+1:]...)
	}

	if len(room.Members) == 0 {
		delete(r.rooms, code)
		return room.Clone(), true, nil
	}

	// Хостом становится самый ранний из оставшихся
	if room.HostID == connID {
		room.HostID = room.Members[0].ConnectionID
	}

	return room.Clone(), false, nil
}

func (r *socialRoomRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}

// generateCode - rejection sampling по активным кодам с ограниченным числом попыток.
// Вызывается под r.mu (достаточно RLock).
func (r *socialRoomRepository) generateCode() (string, error) {
	for _, digits := range codeDigits {
		low := pow10(digits - 1)
		size := pow10(digits) - low

		for range r.maxAttempts {
			code := strconv.Itoa(low + r.intN(size))
			if _, taken := r.rooms[code]; !taken {
				return code, nil
			}
		}
	}

	return "", runtime.ErrCodeSpaceExhausted
}

func pow10(n int) int {
	v := 1
	for range n {
		v *= 10
	}

	return v
}
