package chatlog

import "time"

// Source values recorded for where a reply came from.
const (
	SourceDirect = "direct"
	SourceCanned = "canned"
	SourceError  = "error"
)

// Entry records one backend exchange for the analytics endpoints.
type Entry struct {
	ID             string    `json:"id" bson:"_id"`
	UserID         string    `json:"userId" bson:"userId"`
	ConversationID string    `json:"conversationId" bson:"conversationId"`
	Message        string    `json:"message" bson:"message"`
	Response       string    `json:"response" bson:"response"`
	Source         string    `json:"source" bson:"source"`
	LatencyMs      int64     `json:"latencyMs" bson:"latencyMs"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// Statistics aggregates the recorded exchanges.
type Statistics struct {
	TotalMessages     int64            `json:"totalMessages"`
	UniqueUsers       int64            `json:"uniqueUsers"`
	FallbackResponses int64            `json:"fallbackResponses"`
	AverageLatencyMs  float64          `json:"averageLatencyMs"`
	BySource          map[string]int64 `json:"bySource"`
}
