package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter        EventType = "node_enter"
	EventNodeSkip         EventType = "node_skip"
	EventNodeAnswer       EventType = "node_answer"
	EventValidationFailed EventType = "validation_failed"
	EventRemoteCall       EventType = "remote_call"
	EventRemoteReturn     EventType = "remote_return"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent reports progress on a single node.
type NodeEvent struct {
	EventBase
	Name     string   `json:"name"`
	NodeType NodeType `json:"node_type"`
	Value    any      `json:"value,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// RemoteEvent reports a call to the remote caller.
type RemoteEvent struct {
	EventBase
	Namespace string        `json:"namespace"`
	Method    string        `json:"method"`
	Duration  time.Duration `json:"duration,omitempty"`
	IsError   bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter        func(context.Context, *NodeEvent)
	OnNodeSkip         func(context.Context, *NodeEvent)
	OnNodeAnswer       func(context.Context, *NodeEvent)
	OnValidationFailed func(context.Context, *NodeEvent)
	OnRemoteCall       func(context.Context, *RemoteEvent)
	OnRemoteReturn     func(context.Context, *RemoteEvent)
}
