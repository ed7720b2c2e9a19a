package live

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the speaker of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one finalized transcript line.
type Entry struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// transcriptAccumulator buffers transcription deltas for the in-progress
// turn, one buffer per role. Not safe for concurrent use; the owning session
// serializes access.
type transcriptAccumulator struct {
	input  strings.Builder
	output strings.Builder
}

func (a *transcriptAccumulator) AppendInput(text string) {
	a.input.WriteString(text)
}

func (a *transcriptAccumulator) AppendOutput(text string) {
	a.output.WriteString(text)
}

// Input returns the accumulated user text of the current turn.
func (a *transcriptAccumulator) Input() string { return a.input.String() }

// Output returns the accumulated assistant text of the current turn.
func (a *transcriptAccumulator) Output() string { return a.output.String() }

// Commit finalizes the current turn: non-empty buffers become entries, user
// speech ordered before assistant speech, and both buffers reset. Returns
// nil when both buffers are empty.
func (a *transcriptAccumulator) Commit(now time.Time) []Entry {
	var entries []Entry
	if text := a.input.String(); text != "" {
		entries = append(entries, Entry{
			ID:        uuid.NewString(),
			Role:      RoleUser,
			Text:      text,
			Timestamp: now,
		})
	}
	if text := a.output.String(); text != "" {
		entries = append(entries, Entry{
			ID:        uuid.NewString(),
			Role:      RoleAssistant,
			Text:      text,
			Timestamp: now,
		})
	}
	a.Reset()
	return entries
}

// Reset discards both in-progress buffers.
func (a *transcriptAccumulator) Reset() {
	a.input.Reset()
	a.output.Reset()
}
