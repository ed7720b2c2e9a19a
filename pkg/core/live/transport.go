package live

import "context"

// Frame is one outbound chunk of microphone audio, already quantized to
// 16-bit PCM and base64 encoded.
type Frame struct {
	DataB64  string
	MIMEType string
}

// FunctionCall is a device-control request issued by the assistant.
type FunctionCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult is the outcome of a dispatched function call, correlated back
// to the originating request by ID.
type ToolResult struct {
	ID     string
	Name   string
	Result string
}

// ServerEvent is one decoded message from the upstream session. Fields are
// independent; a single event may carry audio, transcription deltas, and a
// turn boundary at once.
type ServerEvent struct {
	// Audio holds base64 PCM chunks of synthesized speech, in arrival order.
	Audio []string
	// InputTranscript is a transcription delta of the user's speech.
	InputTranscript string
	// OutputTranscript is a transcription delta of the assistant's speech.
	OutputTranscript string
	// TurnComplete marks the end of a conversational turn.
	TurnComplete bool
	// Interrupted signals that the user barged in over playback.
	Interrupted bool
	// ToolCalls holds device-control requests awaiting a response.
	ToolCalls []FunctionCall
	// Err is a fatal upstream error. When set the connection is dead and no
	// further events follow.
	Err error
}

// Conn is an established upstream session. Implementations must allow Send
// calls concurrent with event delivery, and must close the Events channel
// once the connection ends.
type Conn interface {
	// SendRealtimeInput streams one microphone frame upstream.
	SendRealtimeInput(frame Frame) error
	// SendToolResponse reports a function call outcome upstream.
	SendToolResponse(result ToolResult) error
	// Events returns the stream of decoded server messages. The channel is
	// closed when the remote side ends the session.
	Events() <-chan ServerEvent
	// Close tears down the connection. Safe to call more than once.
	Close() error
}

// ConnectConfig carries the per-session parameters a Transport needs to
// establish an upstream connection.
type ConnectConfig struct {
	Model             string
	Voice             string
	SystemInstruction string
}

// Transport establishes upstream sessions. The production implementation
// speaks the Gemini Live protocol; tests substitute fakes.
type Transport interface {
	Connect(ctx context.Context, cfg ConnectConfig) (Conn, error)
}

// Source yields normalized float32 microphone samples. Read blocks until at
// least one sample is available or the source is closed.
type Source interface {
	Read(dst []float32) (int, error)
	Close() error
}

// SourceFactory opens a capture source, typically acquiring the microphone.
type SourceFactory func(ctx context.Context) (Source, error)
