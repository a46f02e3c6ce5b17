package socket

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotter-org/slotter-chat/internal/logger"
)

type recordingRelay struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (r *recordingRelay) Publish(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func TestHub_BroadcastGlobalPublishesWithOrigin(t *testing.T) {
	hub := NewHub(logger.NewNop())
	relay := &recordingRelay{}
	hub.SetRelay(relay)
	local := newTestClient(hub, 4)
	hub.Subscribe(local, []string{ChannelChats})

	hub.BroadcastGlobal(context.Background(), Message{Channel: ChannelChats, Data: "x"})

	require.Len(t, relay.sent, 1)
	assert.Equal(t, hub.ID, relay.sent[0].Origin)
	require.Len(t, local.Outbound, 1)
	assert.Empty(t, (<-local.Outbound).Origin)
}

func TestHub_RelayFailureStillDeliversLocally(t *testing.T) {
	hub := NewHub(logger.NewNop())
	hub.SetRelay(&recordingRelay{err: errors.New("redis down")})
	local := newTestClient(hub, 4)
	hub.Subscribe(local, []string{ChannelChats})

	hub.BroadcastGlobal(context.Background(), Message{Channel: ChannelChats, Data: "x"})

	assert.Len(t, local.Outbound, 1)
}

func TestRedisPubSub_DeliverSkipsOwnOrigin(t *testing.T) {
	hub := NewHub(logger.NewNop())
	rp := &RedisPubSub{log: logger.NewNop()}
	local := newTestClient(hub, 4)
	hub.Subscribe(local, []string{ChannelChats})

	own, err := encodePubSubMessage(Message{Channel: ChannelChats, Data: "mine", Origin: hub.ID})
	require.NoError(t, err)
	assert.False(t, rp.deliver(hub, own))
	assert.Len(t, local.Outbound, 0)

	foreign, err := encodePubSubMessage(Message{Channel: ChannelChats, Data: "theirs", Origin: "other-hub"})
	require.NoError(t, err)
	assert.True(t, rp.deliver(hub, foreign))
	require.Len(t, local.Outbound, 1)
	assert.Equal(t, "theirs", (<-local.Outbound).Data)

	assert.False(t, rp.deliver(hub, "{not json"))
	assert.Len(t, local.Outbound, 0)
}
