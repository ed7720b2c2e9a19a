package live

// Event is a notification emitted by a Session. Consumers switch on the
// concrete type; EventType provides a stable wire name for serialization.
type Event interface {
	EventType() string
}

// StateChangedEvent is emitted on every session state transition.
type StateChangedEvent struct {
	From State
	To   State
}

// EventType returns "state_changed".
func (e *StateChangedEvent) EventType() string { return "state_changed" }

// TranscriptDeltaEvent carries the full accumulated text of the in-progress
// turn for one role. Emitted whenever a transcription fragment arrives, and
// with empty text when the turn commits.
type TranscriptDeltaEvent struct {
	Role Role
	Text string
}

// EventType returns "transcript_delta".
func (e *TranscriptDeltaEvent) EventType() string { return "transcript_delta" }

// EntriesCommittedEvent carries finalized transcript entries appended to the
// history at a turn boundary.
type EntriesCommittedEvent struct {
	Entries []Entry
}

// EventType returns "entries_committed".
func (e *EntriesCommittedEvent) EventType() string { return "entries_committed" }

// HistoryClearedEvent signals that the transcript history was discarded.
type HistoryClearedEvent struct{}

// EventType returns "history_cleared".
func (e *HistoryClearedEvent) EventType() string { return "history_cleared" }

// ToolInvokedEvent records a dispatched device-control call and its result.
type ToolInvokedEvent struct {
	Name   string
	Result string
}

// EventType returns "tool_invoked".
func (e *ToolInvokedEvent) EventType() string { return "tool_invoked" }

// DevicesChangedEvent carries the device state after a mutation.
type DevicesChangedEvent struct {
	Devices DeviceSnapshot
}

// EventType returns "devices_changed".
func (e *DevicesChangedEvent) EventType() string { return "devices_changed" }

// AudioChunkEvent carries one base64 PCM chunk of synthesized speech as it
// is scheduled for playback. Observers can mirror the audio elsewhere.
type AudioChunkEvent struct {
	DataB64 string
}

// EventType returns "audio_chunk".
func (e *AudioChunkEvent) EventType() string { return "audio_chunk" }

// ErrorEvent reports a fatal session error.
type ErrorEvent struct {
	Message string
}

// EventType returns "error".
func (e *ErrorEvent) EventType() string { return "error" }
