package contracts

import (
	"context"
	"studyflow-service/internal/pkg/dto"
)

// ChangeFeed abstracts the row-change notification mechanism (queue consumer,
// polling, or CDC adapter) with at-least-once delivery. Handlers that return a
// transient error cause redelivery; other errors drop the event.
type ChangeFeed interface {
	Subscribe(ctx context.Context, handler func(ctx context.Context, event *dto.ChangeEvent) error) error
}
