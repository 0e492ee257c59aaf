// Package eventsink implements the evaluator's EmitEvent capability: a
// fire-and-forget publish to a message bus, never allowed to propagate
// transport failures back into an evaluation.
package eventsink

import (
	"encoding/json"
	"fmt"

	"delegator/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	stan "github.com/nats-io/stan.go"
)

// Sink is the capability transform.EmitEvent needs. Emit MUST NOT block on
// network I/O; implementations that ship to a remote queue dispatch
// asynchronously and swallow transport errors rather than surface them.
type Sink interface {
	Emit(topic string, ownerID *string, eventType, contextID string, payload any, pageContext any) error
}

// envelope is the wire shape published onto the underlying bus.
type envelope struct {
	OwnerID     *string `json:"ownerId,omitempty"`
	EventType   string  `json:"eventType"`
	ContextID   string  `json:"contextId"`
	Payload     any     `json:"payload"`
	PageContext any     `json:"pageContext,omitempty"`
}

// WatermillSink publishes events over a Watermill message.Publisher. Emit
// dispatches the publish in its own goroutine so a slow or failing
// transport never blocks the evaluator.
type WatermillSink struct {
	publisher message.Publisher
}

// NewInMemSink returns a WatermillSink backed by an in-process gochannel
// bus, for local development and edge routes with no configured queue.
func NewInMemSink() *WatermillSink {
	l := watermill.NewStdLogger(false, false)
	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 100}, l)
	return &WatermillSink{publisher: ps}
}

// NewNATSSink returns a WatermillSink backed by a NATS Streaming
// publisher, for the queue_url configured on an events.user_action block.
func NewNATSSink(clusterID, clientID, url string) (*WatermillSink, error) {
	l := watermill.NewStdLogger(false, false)
	pub, err := nats.NewStreamingPublisher(nats.StreamingPublisherConfig{
		ClusterID: clusterID,
		ClientID:  clientID,
		StanOptions: []stan.Option{
			stan.NatsURL(url),
		},
	}, l)
	if err != nil {
		return nil, fmt.Errorf("eventsink: nats publisher: %w", err)
	}
	return &WatermillSink{publisher: pub}, nil
}

func (s *WatermillSink) Emit(topic string, ownerID *string, eventType, contextID string, payload any, pageContext any) error {
	data, err := json.Marshal(envelope{
		OwnerID:     ownerID,
		EventType:   eventType,
		ContextID:   contextID,
		Payload:     payload,
		PageContext: pageContext,
	})
	if err != nil {
		return fmt.Errorf("eventsink: marshal: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	go func() {
		if err := s.publisher.Publish(topic, msg); err != nil {
			logger.Warn("eventsink: publish to %s failed: %v", topic, err)
		}
	}()
	return nil
}

// NoopSink discards every event. Used by tests that don't exercise
// EmitEvent.
type NoopSink struct{}

func (NoopSink) Emit(topic string, ownerID *string, eventType, contextID string, payload any, pageContext any) error {
	return nil
}

// RecordingSink accumulates emitted events in-process, for tests that
// assert on EmitEvent's side effect.
type RecordingSink struct {
	Events []RecordedEvent
}

// RecordedEvent is one call captured by RecordingSink.
type RecordedEvent struct {
	Topic       string
	OwnerID     *string
	EventType   string
	ContextID   string
	Payload     any
	PageContext any
}

func (r *RecordingSink) Emit(topic string, ownerID *string, eventType, contextID string, payload any, pageContext any) error {
	r.Events = append(r.Events, RecordedEvent{
		Topic: topic, OwnerID: ownerID, EventType: eventType,
		ContextID: contextID, Payload: payload, PageContext: pageContext,
	})
	return nil
}
