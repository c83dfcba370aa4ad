// Package notify carries real-time events from the auth core to the
// notification fan-out. Events are queued on RabbitMQ; the worker in
// cmd/notify_worker delivers them to Redis room channels and, when an
// email target is set, over Mailgun. Publishing is always best-effort:
// a lost event never fails the operation that produced it.
package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event kinds produced by the auth core.
const (
	KindIdentityRegistered = "identity_registered"
	KindIdentityVerified   = "identity_verified"
)

// Event is the JSON payload put on the notification queue.
// Room addresses the real-time channel ("user:<id>"); Email, when set,
// additionally routes the event through the email channel.
type Event struct {
	ID    string         `json:"id"`
	Room  string         `json:"room"`
	Kind  string         `json:"kind"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Email string         `json:"email,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// NewEvent builds an event with a fresh ID.
func NewEvent(room, kind, title, body string) Event {
	return Event{ID: uuid.NewString(), Room: room, Kind: kind, Title: title, Body: body}
}

// RoomChannel is the Redis pub/sub channel for a room.
func RoomChannel(room string) string {
	return "room:" + room
}

// PublishToRoom pushes a serialized event onto the room's Redis channel.
// Subscribed gateways forward it to connected clients.
func PublishToRoom(ctx context.Context, rdb *redis.Client, room string, payload []byte) error {
	return rdb.Publish(ctx, RoomChannel(room), payload).Err()
}
