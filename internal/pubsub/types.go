package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventGameRecorded  EventType = "game-recorded"
	EventSessionClosed EventType = "session-closed"
	EventSyncRequested EventType = "sync-requested"
)

// GameRecordedEvent is published whenever a game is added to a session.
type GameRecordedEvent struct {
	GameID    string   `msgpack:"gameId"`
	SessionID string   `msgpack:"sessionId"`
	PlayerIDs []string `msgpack:"playerIds"`
}

// SessionClosedEvent is published when a session is closed out.
type SessionClosedEvent struct {
	SessionID string `msgpack:"sessionId"`
}

// SyncRequestedEvent asks a worker to reconcile local state with the sheet.
type SyncRequestedEvent struct {
	Reason string `msgpack:"reason"`
}
