package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published while compiling a scenario
const (
	TopicCompileStatus = "compile_status"
	TopicNetworkGraph  = "network_graph"
)

// Compile states carried by TopicCompileStatus events
const (
	StateLoading   = "loading"
	StateCompiling = "compiling"
	StateReady     = "ready"
	StateFailed    = "failed"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // e.g. compile_status, network_graph
	Type    string          `json:"type"`    // e.g. loading, compiling, ready
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic.
	// Context cancellation will close the subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data any) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// CompileStatus reports progress of a scenario compilation
type CompileStatus struct {
	State    string `json:"state"`
	Scenario string `json:"scenario"`
	RunID    string `json:"run_id,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NetworkGraphData summarizes a compiled network
type NetworkGraphData struct {
	RunID   string `json:"run_id"`
	Nodes   int    `json:"nodes"`
	Flows   int    `json:"flows"`
	Buses   int    `json:"buses"`
	Islands int    `json:"islands"`
	Issues  int    `json:"issues"`

	// Changes since the previous compilation
	Full    bool `json:"full"`
	Added   int  `json:"added"`
	Removed int  `json:"removed"`
	Changed int  `json:"changed"`
}
