package chat

import "time"

// Session is a point-in-time copy of a user's conversation.
type Session struct {
	ID                 string    `json:"id"`
	OwnerID            string    `json:"ownerId"`
	Transcript         []Message `json:"transcript"`
	Active             bool      `json:"active"`
	SuggestionsVisible bool      `json:"suggestionsVisible"`
	Loading            bool      `json:"loading"`
	CreatedAt          time.Time `json:"createdAt"`
}
