package port

import (
	"context"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
)

// PhotoRepository is an interface to define photo record persistence
type PhotoRepository interface {
	Create(ctx context.Context, appID string, record domain.NewPhotoRecord) (*domain.PhotoRecord, error)
	ListAll(ctx context.Context, appID string) ([]domain.PhotoRecord, error)
}

// Subscription is a handle on a live listener, released with Unsubscribe
type Subscription interface {
	Unsubscribe()
}

// PhotoCollection is the shared, append-only, live photo collection
type PhotoCollection interface {
	Append(ctx context.Context, record domain.NewPhotoRecord) (*domain.PhotoRecord, error)
	// Subscribe delivers the complete record set initially and after every change.
	Subscribe(ctx context.Context, onSnapshot func([]domain.PhotoRecord), onError func(error)) (Subscription, error)
}
