package domain

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// Realtime event names pushed to connected clients.
const (
	EventPostCreate   = "post:create"
	EventPostLike     = "post:like"
	EventPostComment  = "post:comment"
	EventCommentReact = "comment:react"
	EventBadgeEarned  = "badge:earned"
)

// Broadcaster pushes a named event to every connected realtime client.
// Implementations must not block the caller on slow clients.
type Broadcaster interface {
	Broadcast(event string, data any)
}

// NopBroadcaster discards every event.
type NopBroadcaster struct{}

// Broadcast implements Broadcaster.
func (NopBroadcaster) Broadcast(string, any) {}
