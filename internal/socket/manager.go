package socket

import (
    "context"
    "sync"

    "github.com/google/uuid"
    "github.com/slotter-org/slotter-chat/internal/logger"
)

const (
    // ChannelChats receives every folder-level change.
    ChannelChats = "chats"

    ActionMessageSaved = "message_saved"
    ActionChatDeleted  = "chat_deleted"
)

// ChatChannel is the per-conversation channel name.
func ChatChannel(chatID string) string {
    return "chat:" + chatID
}

type Message struct {
    Channel string      `json:"channel"`
    Data    interface{} `json:"data"`
    // Origin identifies the hub that published the message over Redis.
    Origin  string      `json:"origin,omitempty"`
}

type Hub struct {
    ID        string
    log       *logger.Logger
    mu        sync.RWMutex
    channels  map[string]map[uuid.UUID]*Client

    relay     Relay
}

// Relay carries hub broadcasts to hubs in other processes.
type Relay interface {
    Publish(ctx context.Context, msg Message) error
}

func NewHub(log *logger.Logger) *Hub {
    return &Hub{
        ID:        uuid.NewString(),
        log:       log.With("component", "Hub"),
        channels:  make(map[string]map[uuid.UUID]*Client),
    }
}

func (h *Hub) SetRelay(r Relay) {
    h.relay = r
}

func (h *Hub) Subscribe(client *Client, channels []string) {
    h.mu.Lock()
    defer h.mu.Unlock()

    for _, ch := range channels {
        if h.channels[ch] == nil {
            h.channels[ch] = make(map[uuid.UUID]*Client)
        }
        h.channels[ch][client.ID] = client
    }
    h.log.Debug("Client subscribed", "client", client.ID, "channels", channels)
}

func (h *Hub) Unsubscribe(client *Client) {
    h.mu.Lock()
    defer h.mu.Unlock()

    for ch, clientsMap := range h.channels {
        if _, ok := clientsMap[client.ID]; ok {
            delete(clientsMap, client.ID)
            if len(clientsMap) == 0 {
                delete(h.channels, ch)
            }
        }
    }
    h.log.Debug("Client unsubscribed from all channels", "client", client.ID)
}

func (h *Hub) UnsubscribeFromChannel(client *Client, channel string) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if clientsMap, ok := h.channels[channel]; ok {
        delete(clientsMap, client.ID)
        if len(clientsMap) == 0 {
            delete(h.channels, channel)
        }
    }
}

// SubscriberCount reports how many clients listen on channel.
func (h *Hub) SubscriberCount(channel string) int {
    h.mu.RLock()
    defer h.mu.RUnlock()
    return len(h.channels[channel])
}

func (h *Hub) localBroadcast(msg Message) {
    h.mu.RLock()
    defer h.mu.RUnlock()

    clientsMap, ok := h.channels[msg.Channel]
    if !ok {
        return
    }
    for _, client := range clientsMap {
        select {
        case client.Outbound <- msg:
        default:
            h.log.Warn("Dropping message to client; outbound buffer full", "client", client.ID, "channel", msg.Channel)
        }
    }
}

// BroadcastGlobal delivers to local clients and, when a relay is set, to hubs
// in other processes.
func (h *Hub) BroadcastGlobal(ctx context.Context, msg Message) {
    h.localBroadcast(msg)

    if h.relay != nil {
        msg.Origin = h.ID
        if err := h.relay.Publish(ctx, msg); err != nil {
            h.log.Warn("Failed to publish to relay", "error", err)
        }
    }
}

// BroadcastChatEvent tells both the chat's own channel and the folder list.
func (h *Hub) BroadcastChatEvent(ctx context.Context, chatID, action string, payload interface{}) {
    data := map[string]interface{}{
        "action":  action,
        "chat_id": chatID,
        "payload": payload,
    }
    h.BroadcastGlobal(ctx, Message{Channel: ChatChannel(chatID), Data: data})
    h.BroadcastGlobal(ctx, Message{Channel: ChannelChats, Data: data})
}
