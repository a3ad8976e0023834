package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/rbroggi/gestionusers/internal/core/model"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// NewProducer creates a new producer.
func NewProducer(topic *pubsub.Topic) (*Producer, error) {
	if topic == nil {
		return nil, errors.New("topic is nil")
	}
	return &Producer{topic: topic}, nil
}

// Producer is the pubsub producer of user events.
type Producer struct {
	topic *pubsub.Topic
}

// Send publishes the event and blocks until the server acknowledged it.
func (p *Producer) Send(ctx context.Context, event model.UserEvent) error {
	msg, err := toMessage(event)
	if err != nil {
		return err
	}
	result := p.topic.Publish(ctx, msg)
	// Block until the result is returned and a server-generated
	// ID is returned for the published message.
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("pubsub: result.Get: %w", err)
	}
	return nil
}

// Stop flushes pending messages.
func (p *Producer) Stop() {
	p.topic.Stop()
}

func toMessage(event model.UserEvent) (*pubsub.Message, error) {
	data, err := json.Marshal(userEventMessage{
		ID:     event.ID,
		Op:     operation(event),
		Before: event.Before,
		After:  event.After,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling user-event message: %w", err)
	}
	return &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"op": operation(event), "event_id": event.ID},
	}, nil
}

func operation(event model.UserEvent) string {
	switch {
	case event.Before == nil:
		return opCreate
	case event.After == nil:
		return opDelete
	default:
		return opUpdate
	}
}

// userEventMessage is the wire format of the public user events.
type userEventMessage struct {
	ID     string      `json:"id"`
	Op     string      `json:"op"`
	Before *model.User `json:"before"`
	After  *model.User `json:"after"`
}
