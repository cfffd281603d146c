package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/LetzTalk/internal/domain/events"
	"github.com/qrave1/LetzTalk/internal/domain/runtime"
	"github.com/qrave1/LetzTalk/internal/infra/adapters/memory"
)

type failingRooms struct {
	memory.SocialRoomRepository
}

func (failingRooms) NextCode() (string, error) {
	return "", runtime.ErrCodeSpaceExhausted
}

func TestRoom_Lifecycle(t *testing.T) {
	ctx := context.Background()
	tb := newTestBroker(t)

	a := tb.connect(t, "a")
	b := tb.connect(t, "b")

	tb.CreateRoom(ctx, "a", events.CreateRoomEvent{RoomName: "Test", DisplayName: "Alice"})

	created := nextData[events.RoomEvent](t, a, events.TypeRoomJoined).Room
	assert.Regexp(t, `^[0-9]{4}$`, created.Code)
	assert.Equal(t, "Test", created.Name)
	assert.Equal(t, "a", created.HostID)
	assert.Equal(t, []string{"Alice"}, created.Members)
	assertSilent(t, a)

	tb.JoinRoom(ctx, "b", events.JoinRoomEvent{RoomCode: created.Code, DisplayName: "Bob"})

	joined := nextData[events.RoomEvent](t, b, events.TypeRoomJoined).Room
	assert.Equal(t, []string{"Alice", "Bob"}, joined.Members)

	for _, conn := range []*runtime.Connection{a, b} {
		updated := nextData[events.RoomEvent](t, conn, events.TypeRoomUpdated).Room
		assert.Equal(t, []string{"Alice", "Bob"}, updated.Members)
		assert.Equal(t, "a", updated.HostID)
	}

	tb.Disconnect(ctx, "a")

	updated := nextData[events.RoomEvent](t, b, events.TypeRoomUpdated).Room
	assert.Equal(t, "b", updated.HostID)
	assert.Equal(t, []string{"Bob"}, updated.Members)

	tb.LeaveRoom(ctx, "b")

	assertSilent(t, b)
	assert.Zero(t, tb.Stats().SocialRooms)
	assert.Equal(t, runtime.MembershipNone, tb.connRepo.Membership("b"))
}

func TestRoom_JoinErrors(t *testing.T) {
	ctx := context.Background()
	tb := newTestBroker(t)

	a := tb.connect(t, "a")
	b := tb.connect(t, "b")

	tb.JoinRoom(ctx, "a", events.JoinRoomEvent{RoomCode: "12ab", DisplayName: "Alice"})
	assert.Equal(t, "Invalid room code", nextData[events.ErrorEvent](t, a, events.TypeRoomError).Message)

	tb.JoinRoom(ctx, "a", events.JoinRoomEvent{RoomCode: "", DisplayName: "Alice"})
	assert.Equal(t, "Invalid room code", nextData[events.ErrorEvent](t, a, events.TypeRoomError).Message)

	tb.JoinRoom(ctx, "a", events.JoinRoomEvent{RoomCode: "0000", DisplayName: "Alice"})
	assert.Equal(t, "Room not found", nextData[events.ErrorEvent](t, a, events.TypeRoomError).Message)

	assertSilent(t, a, b)
}

func TestRoom_FailedJoinKeepsCurrentState(t *testing.T) {
	ctx := context.Background()
	tb := newTestBroker(t)

	a := tb.connect(t, "a")
	b := tb.connect(t, "b")

	tb.FindMatch(ctx, "a")
	tb.FindMatch(ctx, "b")
	next(t, a)
	next(t, b)

	tb.JoinRoom(ctx, "a", events.JoinRoomEvent{RoomCode: "0000"})
	next(t, a)

	partner, ok := tb.pairRepo.PartnerOf("a")
	require.True(t, ok)
	assert.Equal(t, "b", partner)
	assertSilent(t, b)
}

func TestRoom_RejoinSameRoomResendsSnapshot(t *testing.T) {
	ctx := context.Background()
	tb := newTestBroker(t)

	a := tb.connect(t, "a")

	tb.CreateRoom(ctx, "a", events.CreateRoomEvent{RoomName: "R", DisplayName: "Alice"})
	room := nextData[events.RoomEvent](t, a, events.TypeRoomJoined).Room

	tb.JoinRoom(ctx, "a", events.JoinRoomEvent{RoomCode: room.Code, DisplayName: "Other"})

	again := nextData[events.RoomEvent](t, a, events.TypeRoomJoined).Room
	assert.Equal(t, room, again)
	assertSilent(t, a)
}

func TestRoom_SwitchRooms(t *testing.T) {
	ctx := context.Background()
	tb := newTestBroker(t)

	a := tb.connect(t, "a")
	b := tb.connect(t, "b")
	c := tb.connect(t, "c")

	tb.CreateRoom(ctx, "a", events.CreateRoomEvent{RoomName: "one", DisplayName: "Alice"})
	first := nextData[events.RoomEvent](t, a, events.TypeRoomJoined).Room

	tb.JoinRoom(ctx, "b", events.JoinRoomEvent{RoomCode: first.Code, DisplayName: "Bob"})
	next(t, b)
	next(t, a)
	next(t, b)

	tb.CreateRoom(ctx, "c", events.CreateRoomEvent{RoomName: "two", DisplayName: "Carol"})
	second := nextData[events.RoomEvent](t, c, events.TypeRoomJoined).Room
	require.NotEqual(t, first.Code, second.Code)

	// b уходит во вторую комнату: первая получает room_updated
	tb.JoinRoom(ctx, "b", events.JoinRoomEvent{RoomCode: second.Code, DisplayName: "Bob"})

	left := nextData[events.RoomEvent](t, a, events.TypeRoomUpdated).Room
	assert.Equal(t, []string{"Alice"}, left.Members)

	assert.Equal(t, []string{"Carol", "Bob"}, nextData[events.RoomEvent](t, b, events.TypeRoomJoined).Room.Members)
	nextData[events.RoomEvent](t, b, events.TypeRoomUpdated)
	nextData[events.RoomEvent](t, c, events.TypeRoomUpdated)
	tb.assertExclusive(t)
}

func TestRoom_DefaultsNames(t *testing.T) {
	ctx := context.Background()
	tb := newTestBroker(t)

	a := tb.connect(t, "a")

	tb.CreateRoom(ctx, "a", events.CreateRoomEvent{RoomName: "   ", DisplayName: ""})

	room := nextData[events.RoomEvent](t, a, events.TypeRoomJoined).Room
	assert.Equal(t, runtime.DefaultRoomName, room.Name)
	assert.Equal(t, []string{runtime.DefaultDisplayName}, room.Members)
}

func TestRoom_LeaveWhenNotInRoomIsNoop(t *testing.T) {
	ctx := context.Background()
	tb := newTestBroker(t)

	a := tb.connect(t, "a")
	b := tb.connect(t, "b")

	tb.FindMatch(ctx, "a")
	tb.LeaveRoom(ctx, "a")
	tb.LeaveRoom(ctx, "b")

	assertSilent(t, a, b)
	assert.Equal(t, runtime.MembershipQueued, tb.connRepo.Membership("a"))
	assert.Equal(t, 1, tb.Stats().WaitingCount)
}

func TestRoom_Message(t *testing.T) {
	ctx := context.Background()
	tb := newTestBroker(t)

	a := tb.connect(t, "a")
	b := tb.connect(t, "b")
	outsider := tb.connect(t, "c")

	tb.CreateRoom(ctx, "a", events.CreateRoomEvent{RoomName: "R", DisplayName: "Alice"})
	room := nextData[events.RoomEvent](t, a, events.TypeRoomJoined).Room
	tb.JoinRoom(ctx, "b", events.JoinRoomEvent{RoomCode: room.Code, DisplayName: "Bob"})
	next(t, b)
	next(t, a)
	next(t, b)

	tb.RoomMessage(ctx, "b", events.RoomMessageEvent{Text: " hello "})

	for _, conn := range []*runtime.Connection{a, b} {
		got := nextData[events.RoomChatEvent](t, conn, events.TypeRoomMessage)
		assert.Equal(t, "Bob", got.SenderName)
		assert.Equal(t, "hello", got.Text)
		assert.True(t, got.SentAt.Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)))
	}

	tb.RoomMessage(ctx, "b", events.RoomMessageEvent{Text: "\n\t "})
	tb.RoomMessage(ctx, "c", events.RoomMessageEvent{Text: "not a member"})

	assertSilent(t, a, b, outsider)
}

func TestRoom_CreateReportsExhaustedCodeSpace(t *testing.T) {
	ctx := context.Background()
	tb := newTestBroker(t)

	tb.roomRepo = failingRooms{SocialRoomRepository: tb.roomRepo}
	a := tb.connect(t, "a")

	tb.CreateRoom(ctx, "a", events.CreateRoomEvent{RoomName: "R"})

	got := nextData[events.ErrorEvent](t, a, events.TypeRoomError)
	assert.Equal(t, "No free room codes, try again later", got.Message)
	assert.Equal(t, runtime.MembershipNone, tb.connRepo.Membership("a"))
}

func TestRoom_CreateFailureKeepsPair(t *testing.T) {
	ctx := context.Background()
	tb := newTestBroker(t)

	tb.roomRepo = failingRooms{SocialRoomRepository: tb.roomRepo}
	a := tb.connect(t, "a")
	b := tb.connect(t, "b")

	tb.FindMatch(ctx, "a")
	tb.FindMatch(ctx, "b")
	nextData[events.MatchedEvent](t, a, events.TypeMatched)
	nextData[events.MatchedEvent](t, b, events.TypeMatched)

	tb.CreateRoom(ctx, "a", events.CreateRoomEvent{RoomName: "R"})

	got := nextData[events.ErrorEvent](t, a, events.TypeRoomError)
	assert.Equal(t, "No free room codes, try again later", got.Message)
	assertSilent(t, a, b)

	assert.Equal(t, runtime.MembershipPaired, tb.connRepo.Membership("a"))
	assert.Equal(t, runtime.MembershipPaired, tb.connRepo.Membership("b"))
	assert.Equal(t, 1, tb.Stats().ActiveRooms)
}
