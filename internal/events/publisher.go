package events

import (
	"time"

	"github.com/ashok9315-cmyk/profolia.art/internal/types"
	"github.com/ashok9315-cmyk/profolia.art/internal/types/media"
)

// Publisher interface for publishing events
type Publisher interface {
	PublishAssetIngested(profileID string, asset *media.MediaAsset) error
	PublishBatchCompleted(profileID string, total, succeeded, failed int) error
}

// EventPublisher implements the Publisher interface
type EventPublisher struct {
	hub WebSocketHub
}

// WebSocketHub interface for the WebSocket hub
type WebSocketHub interface {
	BroadcastToProfile(profileID string, event *types.Event)
	IsProfileConnected(profileID string) bool
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(hub WebSocketHub) *EventPublisher {
	return &EventPublisher{
		hub: hub,
	}
}

// PublishAssetIngested notifies the owning profile that one media asset
// finished ingesting
func (p *EventPublisher) PublishAssetIngested(profileID string, asset *media.MediaAsset) error {
	// Only send if the owner is connected
	if !p.hub.IsProfileConnected(profileID) {
		return nil
	}

	eventData := &types.AssetIngestedEvent{
		AssetID:    asset.ID,
		FileName:   asset.FileName,
		Kind:       string(asset.Kind),
		URL:        asset.URL,
		Category:   asset.Category,
		IngestedAt: time.Now().UTC().Format(time.RFC3339),
	}

	event := types.NewEvent(types.EventAssetIngested, eventData)
	p.hub.BroadcastToProfile(profileID, event)

	return nil
}

// PublishBatchCompleted notifies the owning profile that an archive batch
// finished, with its final counts
func (p *EventPublisher) PublishBatchCompleted(profileID string, total, succeeded, failed int) error {
	if !p.hub.IsProfileConnected(profileID) {
		return nil
	}

	eventData := &types.BatchCompletedEvent{
		Total:       total,
		Succeeded:   succeeded,
		Failed:      failed,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}

	event := types.NewEvent(types.EventBatchCompleted, eventData)
	p.hub.BroadcastToProfile(profileID, event)

	return nil
}
