package runtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnection_TrySend(t *testing.T) {
	conn := NewConnection("a", uuid.Nil, 2)

	require.NoError(t, conn.TrySend([]byte("1")))
	require.NoError(t, conn.TrySend([]byte("2")))
	require.ErrorIs(t, conn.TrySend([]byte("3")), ErrBackpressure)

	assert.Equal(t, []byte("1"), <-conn.Send())
	require.NoError(t, conn.TrySend([]byte("3")))
}

func TestConnection_Close(t *testing.T) {
	conn := NewConnection("a", uuid.Nil, 1)
	require.NoError(t, conn.TrySend([]byte("pending")))

	conn.Close()
	conn.Close()

	require.ErrorIs(t, conn.TrySend([]byte("late")), ErrConnectionClosed)

	// буфер дочитывается до закрытия канала
	frame, ok := <-conn.Send()
	require.True(t, ok)
	assert.Equal(t, []byte("pending"), frame)

	_, ok = <-conn.Send()
	assert.False(t, ok)
}

func TestConnection_Identity(t *testing.T) {
	assert.False(t, NewConnection("guest", uuid.Nil, 1).HasIdentity())
	assert.True(t, NewConnection("user", uuid.New(), 1).HasIdentity())
	assert.Equal(t, MembershipNone, NewConnection("x", uuid.Nil, 0).Membership)
}
