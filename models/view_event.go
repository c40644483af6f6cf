package models

import (
	"time"

	"github.com/google/uuid"
)

// ViewEvent is the wire form of one article view shared between instances.
type ViewEvent struct {
	ID        uuid.UUID `json:"id"`
	Origin    uuid.UUID `json:"origin"`
	ArticleID string    `json:"article_id"`
	Timestamp time.Time `json:"timestamp"`
}
