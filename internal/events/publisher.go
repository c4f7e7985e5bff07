package events

import (
	"context"

	"github.com/google/uuid"

	"humesync/internal/adapters/kafka"
	"humesync/pkg/errors"
	"humesync/pkg/logger"
)

// Producer sends one keyed message to a topic
type Producer interface {
	Publish(ctx context.Context, topic string, key string, event interface{}) error
}

// AgentSyncedEvent is published after a remote config was created or updated
type AgentSyncedEvent struct {
	BaseEvent
	AgentID        uuid.UUID `json:"agent_id"`
	AgentName      string    `json:"agent_name"`
	RemoteConfigID string    `json:"remote_config_id"`
	Operation      string    `json:"operation"` // create|update
}

// AgentDeletedEvent is published after a local record was removed
type AgentDeletedEvent struct {
	BaseEvent
	AgentID        uuid.UUID `json:"agent_id"`
	AgentName      string    `json:"agent_name"`
	RemoteConfigID string    `json:"remote_config_id,omitempty"`
	RemoteDeleted  bool      `json:"remote_deleted"`
}

// AgentSyncFailedEvent is published when the provider refused a sync
type AgentSyncFailedEvent struct {
	BaseEvent
	AgentID   uuid.UUID `json:"agent_id"`
	AgentName string    `json:"agent_name"`
	Operation string    `json:"operation"`
	Error     string    `json:"error"`
}

// ReconciledEvent summarizes one reconciliation pass
type ReconciledEvent struct {
	BaseEvent
	Checked  int      `json:"checked"`
	Missing  []string `json:"missing"`
	Orphaned []string `json:"orphaned"`
}

// Publisher publishes sync events. A nil producer turns every call into a no-op.
type Publisher struct {
	producer Producer
	source   string
	log      *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(producer Producer, source string) *Publisher {
	return &Publisher{
		producer: producer,
		source:   source,
		log:      logger.Get().With("component", "event_publisher"),
	}
}

// PublishAgentSynced announces a successful create or update
func (p *Publisher) PublishAgentSynced(ctx context.Context, id uuid.UUID, name, configID, operation string) error {
	return p.publish(ctx, kafka.TopicAgentSynced, id.String(), AgentSyncedEvent{
		BaseEvent:      NewBaseEvent(kafka.TopicAgentSynced, p.source),
		AgentID:        id,
		AgentName:      name,
		RemoteConfigID: configID,
		Operation:      operation,
	})
}

// PublishAgentDeleted announces a removed agent
func (p *Publisher) PublishAgentDeleted(ctx context.Context, id uuid.UUID, name, configID string, remoteDeleted bool) error {
	return p.publish(ctx, kafka.TopicAgentDeleted, id.String(), AgentDeletedEvent{
		BaseEvent:      NewBaseEvent(kafka.TopicAgentDeleted, p.source),
		AgentID:        id,
		AgentName:      name,
		RemoteConfigID: configID,
		RemoteDeleted:  remoteDeleted,
	})
}

// PublishSyncFailed announces a provider failure for an agent
func (p *Publisher) PublishSyncFailed(ctx context.Context, id uuid.UUID, name, operation string, cause error) error {
	msg := ""
	if cause != nil {
		msg = SanitizeUTF8(cause.Error())
	}
	return p.publish(ctx, kafka.TopicAgentSyncFailed, id.String(), AgentSyncFailedEvent{
		BaseEvent: NewBaseEvent(kafka.TopicAgentSyncFailed, p.source),
		AgentID:   id,
		AgentName: name,
		Operation: operation,
		Error:     msg,
	})
}

// PublishReconciled announces the outcome of a reconciliation pass
func (p *Publisher) PublishReconciled(ctx context.Context, checked int, missing, orphaned []string) error {
	return p.publish(ctx, kafka.TopicAgentReconciled, "reconcile", ReconciledEvent{
		BaseEvent: NewBaseEvent(kafka.TopicAgentReconciled, p.source),
		Checked:   checked,
		Missing:   nonNil(missing),
		Orphaned:  nonNil(orphaned),
	})
}

func (p *Publisher) publish(ctx context.Context, topic, key string, event interface{}) error {
	if p == nil || p.producer == nil {
		return nil
	}

	if err := p.producer.Publish(ctx, topic, key, event); err != nil {
		p.log.Errorw("Failed to publish event",
			"topic", topic,
			"key", key,
			"error", err,
		)
		return errors.Wrap(err, "send to kafka")
	}

	p.log.Debugw("Event published", "topic", topic, "key", key)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
