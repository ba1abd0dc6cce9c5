package contract

import (
	"trading-chat-be/pkg/spreadsheet"
	"trading-chat-be/pkg/store"
)

// ISessionRepository keeps per-user conversation state for the life of the process.
type ISessionRepository interface {
	// GetOrCreateTranscript seeds the transcript with seedSystemPrompt when the
	// user has none yet. The returned session is live: later appends are visible through it.
	GetOrCreateTranscript(userId string, seedSystemPrompt string) *store.Session
	// Append requires GetOrCreateTranscript to have been called for userId.
	Append(userId string, role string, text string) error
	Recent(userId string, n int) []store.Message
	SetRecords(userId string, records []spreadsheet.Record)
	GetRecords(userId string) ([]spreadsheet.Record, bool)

	// Lock serializes work for one user. Call the returned func to release.
	Lock(userId string) (unlock func())
}
