package domain

import (
	"time"

	"github.com/google/uuid"
)

// PhotoAddedEvent is published on the change feed after a record is appended
type PhotoAddedEvent struct {
	AppID      string    `json:"appId"`
	PhotoID    uuid.UUID `json:"photoId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// CollectionPath returns the document collection path of the photo gallery for a namespace
func CollectionPath(appID string) string {
	return "artifacts/" + appID + "/public/data/weddingPhotos"
}
