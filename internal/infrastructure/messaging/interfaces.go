// Package messaging provides the live activity feed over websockets.
package messaging

// Publisher is the write side of the activity feed. Services push events
// through it without knowing about connected clients.
type Publisher interface {
	Publish(event ActivityEvent)
}
