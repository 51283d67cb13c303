package port

import (
	"context"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
)

// ChangeFeed is an interface to define a collection change notification broker (nats, ...)
type ChangeFeed interface {
	PublishPhotoAdded(ctx context.Context, event domain.PhotoAddedEvent) error
	Subscribe(ctx context.Context, appID string, onEvent func(domain.PhotoAddedEvent), onError func(error)) (Subscription, error)
	Close() error
}
