package events

import (
	"context"
	"strconv"
	"time"

	"github.com/Skotchmaster/catalog_api/internal/logging"
)

const (
	ProductCreated           = "product_created"
	ProductUpdated           = "product_updated"
	ProductDeleted           = "product_deleted"
	ProductRestored          = "product_restored"
	ProductForceDeleted      = "product_force_deleted"
	ProductThumbnailUploaded = "product_thumbnail_uploaded"
	UserLoggedIn             = "user_logged_in"
	UserLoggedOut            = "user_logged_out"
)

type Event struct {
	Type       string         `json:"type"`
	ActorID    uint           `json:"actor_id"`
	ProductID  uint           `json:"product_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// Key partitions product events by product and user events by actor.
func (e Event) Key() string {
	if e.ProductID != 0 {
		return "product:" + strconv.FormatUint(uint64(e.ProductID), 10)
	}
	return "user:" + strconv.FormatUint(uint64(e.ActorID), 10)
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// PublishTimeout bounds how long Emit holds up the request that triggered it.
var PublishTimeout = 2 * time.Second

// Emit publishes ev and only logs a failure; callers have already committed.
func Emit(ctx context.Context, p Publisher, ev Event) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	pubCtx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()
	if err := p.Publish(pubCtx, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed",
			"type", ev.Type,
			"product_id", ev.ProductID,
			"error", err,
		)
	}
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
