package services

import (
	"context"
	"time"

	"socialgraph/logger"
)

type EventType string

const (
	EventRequestSent     EventType = "friend.request_sent"
	EventRequestAccepted EventType = "friend.request_accepted"
	EventRequestDeclined EventType = "friend.request_declined"
	EventFriendRemoved   EventType = "friend.removed"
	EventMessagePosted   EventType = "friend.message_posted"
)

// Event - событие графа для соседних сервисов (уведомления, ленты).
// ActorID - кто выполнил действие, TargetID - второй участник пары.
type Event struct {
	Type       EventType `json:"type"`
	ActorID    int64     `json:"actor_id"`
	TargetID   int64     `json:"target_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher используется, когда RabbitMQ не настроен
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error {
	return nil
}

// publishEvent вызывается только после коммита. Ошибка публикации логируется,
// но операция уже выполнена и не откатывается.
func publishEvent(ctx context.Context, p Publisher, eventType EventType, actorID, targetID int64) {
	event := Event{
		Type:       eventType,
		ActorID:    actorID,
		TargetID:   targetID,
		OccurredAt: time.Now().UTC(),
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event", "type", eventType, "actor_id", actorID, "target_id", targetID, "error", err)
	}
}
