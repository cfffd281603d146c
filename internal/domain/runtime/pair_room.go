package runtime

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSelfPair      = errors.New("connection cannot be paired with itself")
	ErrAlreadyPaired = errors.New("connection already paired")
)

// PairRoom - эфемерная сессия ровно двух соединений
type PairRoom struct {
	ID        string
	MemberA   string
	MemberB   string
	CreatedAt time.Time
}

func NewPairRoom(memberA, memberB string) (*PairRoom, error) {
	if memberA == memberB {
		return nil, ErrSelfPair
	}

	return &PairRoom{
		ID:        uuid.NewString(),
		MemberA:   memberA,
		MemberB:   memberB,
		CreatedAt: time.Now(),
	}, nil
}

// PartnerOf возвращает второго участника, false если connID не в комнате
func (r *PairRoom) PartnerOf(connID string) (string, bool) {
	switch connID {
	case r.MemberA:
		return r.MemberB, true
	case r.MemberB:
		return r.MemberA, true
	default:
		return "", false
	}
}
