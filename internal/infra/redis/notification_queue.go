package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"fieldops-assignment/internal/domain/ports/collab"
)

const notificationListKey = "assignment:notifications"

var _ collab.NotificationQueue = (*NotificationQueue)(nil)

// NotificationQueue pushes assignment events onto a redis list consumed by
// the external delivery subsystem. The pipeline only produces here.
type NotificationQueue struct {
	cli RedisClient
}

func NewNotificationQueue(cli RedisClient) *NotificationQueue {
	return &NotificationQueue{cli: cli}
}

func (q *NotificationQueue) Enqueue(ctx context.Context, ev collab.NotificationEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode notification event: %w", err)
	}
	return q.cli.LPush(ctx, notificationListKey, b)
}

// Depth reports how many events are awaiting delivery.
func (q *NotificationQueue) Depth(ctx context.Context) (int64, error) {
	return q.cli.LLen(ctx, notificationListKey)
}
