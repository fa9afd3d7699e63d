package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ritzau/deflex-graph/pkg/logging"
)

// ErrPublisherClosed is returned when using a closed publisher
var ErrPublisherClosed = errors.New("publisher is closed")

// subscriberBuffer is the channel size of each subscription
const subscriberBuffer = 100

// TopicConfig configures buffering behavior for a topic
type TopicConfig struct {
	BufferSize int  // Number of events to buffer (0 = no buffering)
	ReplayAll  bool // Replay all buffered events instead of only the last
}

type topicState struct {
	config  TopicConfig
	version int
	buffer  []Event
	subs    map[*sseSubscription]struct{}
}

// SSEPublisher implements Publisher for Server-Sent Events endpoints
type SSEPublisher struct {
	mu     sync.Mutex
	topics map[string]*topicState
	closed bool
}

// NewSSEPublisher creates a new SSE-based publisher
func NewSSEPublisher() *SSEPublisher {
	return &SSEPublisher{
		topics: make(map[string]*topicState),
	}
}

// topic returns the state of a topic, creating it on first use. Callers hold mu.
func (p *SSEPublisher) topic(name string) *topicState {
	ts, ok := p.topics[name]
	if !ok {
		ts = &topicState{subs: make(map[*sseSubscription]struct{})}
		p.topics[name] = ts
	}
	return ts
}

// ConfigureTopic sets buffering configuration for a topic
func (p *SSEPublisher) ConfigureTopic(topic string, config TopicConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic(topic).config = config
}

// Subscribe creates a new subscription to a topic. Buffered events are
// replayed to the new subscriber before any new ones.
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPublisherClosed
	}

	sub := &sseSubscription{
		topic:     topic,
		events:    make(chan Event, subscriberBuffer),
		publisher: p,
	}

	ts := p.topic(topic)
	ts.subs[sub] = struct{}{}

	replay := ts.buffer
	if !ts.config.ReplayAll && len(replay) > 0 {
		replay = replay[len(replay)-1:]
	}
	for _, event := range replay {
		select {
		case sub.events <- event:
		default:
			logging.Warn("could not replay event to new subscriber", "topic", topic, "version", event.Version)
		}
	}
	if len(replay) > 0 {
		logging.Debug("replayed events to new subscriber", "topic", topic, "count", len(replay))
	}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// Publish sends an event to all subscribers of a topic. Subscribers that
// fall behind miss events rather than block the publisher.
func (p *SSEPublisher) Publish(topic string, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}

	ts := p.topic(topic)
	ts.version++
	event := Event{
		Topic:   topic,
		Type:    eventType,
		Data:    payload,
		Version: ts.version,
	}

	if n := ts.config.BufferSize; n > 0 {
		ts.buffer = append(ts.buffer, event)
		if len(ts.buffer) > n {
			ts.buffer = ts.buffer[len(ts.buffer)-n:]
		}
	}

	for sub := range ts.subs {
		select {
		case sub.events <- event:
		default:
			logging.Warn("subscription channel full, dropping event", "topic", topic, "version", event.Version)
		}
	}

	return nil
}

// Close shuts down the publisher and closes all subscription channels
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, ts := range p.topics {
		for sub := range ts.subs {
			close(sub.events)
		}
		ts.subs = make(map[*sseSubscription]struct{})
	}

	return nil
}

// Subscribers returns the number of active subscriptions of a topic
func (p *SSEPublisher) Subscribers(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ts, ok := p.topics[topic]; ok {
		return len(ts.subs)
	}
	return 0
}

func (p *SSEPublisher) unsubscribe(sub *sseSubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ts, ok := p.topics[sub.topic]; ok {
		delete(ts.subs, sub)
	}
}

// sseSubscription implements Subscription
type sseSubscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher
	once      sync.Once
}

func (s *sseSubscription) Topic() string {
	return s.topic
}

func (s *sseSubscription) Events() <-chan Event {
	return s.events
}

// Close detaches the subscription from its publisher. The events channel
// stays open until the publisher closes.
func (s *sseSubscription) Close() error {
	s.once.Do(func() { s.publisher.unsubscribe(s) })
	return nil
}

// WriteSSE writes an event in the SSE wire format: "event: <topic>",
// "id: <version>" and "data: {json}" followed by a blank line.
func WriteSSE(w io.Writer, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = fmt.Fprintf(w, "event: %s\nid: %d\ndata: %s\n\n", event.Topic, event.Version, data)
	return err
}
