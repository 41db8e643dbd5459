package types

import "time"

// EventType represents the type of real-time event
type EventType string

const (
	EventAssetIngested  EventType = "media.asset.ingested"
	EventBatchCompleted EventType = "media.batch.completed"
)

// Event represents a real-time event that can be sent over WebSocket
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// AssetIngestedEvent is emitted once per media asset the pipeline persists,
// so a connected owner can watch a batch fill in item by item.
type AssetIngestedEvent struct {
	AssetID    string `json:"asset_id"`
	FileName   string `json:"file_name"`
	Kind       string `json:"kind"`
	URL        string `json:"url"`
	Category   string `json:"category"`
	IngestedAt string `json:"ingested_at"`
}

// BatchCompletedEvent is emitted when an archive ingestion request finishes.
type BatchCompletedEvent struct {
	Total       int    `json:"total"`
	Succeeded   int    `json:"succeeded"`
	Failed      int    `json:"failed"`
	CompletedAt string `json:"completed_at"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
