package live

// State identifies where a session is in its lifecycle.
type State int

const (
	// StateIdle means no session is active.
	StateIdle State = iota
	// StateConnecting means the microphone and upstream link are being opened.
	StateConnecting
	// StateListening means the session is streaming microphone audio upstream.
	StateListening
	// StateThinking means the assistant is preparing a response.
	StateThinking
	// StateSpeaking means synthesized audio is playing back.
	StateSpeaking
	// StateError means the session terminated abnormally and must be
	// restarted explicitly.
	StateError
)

// String returns the lowercase wire name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateListening:
		return "listening"
	case StateThinking:
		return "thinking"
	case StateSpeaking:
		return "speaking"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// StatusText returns the user-facing status line for the state.
func (s State) StatusText() string {
	switch s {
	case StateIdle:
		return "Waiting for command..."
	case StateConnecting:
		return "Establishing link..."
	case StateListening:
		return "I'm listening..."
	case StateThinking:
		return "Processing..."
	case StateSpeaking:
		return "Gemini speaking..."
	case StateError:
		return "Connection error"
	default:
		return "Unknown"
	}
}

// Active reports whether a session is currently running in this state.
func (s State) Active() bool {
	switch s {
	case StateConnecting, StateListening, StateThinking, StateSpeaking:
		return true
	default:
		return false
	}
}
