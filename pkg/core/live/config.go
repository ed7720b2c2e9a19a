package live

const (
	// DefaultModel is the realtime conversational model used when none is
	// configured.
	DefaultModel = "gemini-2.5-flash-native-audio-preview-12-2025"

	// DefaultVoice is the prebuilt synthesis voice.
	DefaultVoice = "Kore"

	// DefaultSystemInstruction frames the assistant's role and the devices
	// it controls.
	DefaultSystemInstruction = "You are a helpful and friendly smart home assistant named Gemini. " +
		"You can control lights and thermostat. Be conversational, concise, and professional. " +
		"Use the provided tools when the user asks to change the environment."

	// CaptureSampleRate is the microphone rate in Hz.
	CaptureSampleRate = 16000

	// PlaybackSampleRate is the synthesized audio rate in Hz.
	PlaybackSampleRate = 24000

	// CaptureFrameSize is the number of samples batched per upstream send.
	CaptureFrameSize = 4096

	// CaptureMIMEType labels outbound microphone frames.
	CaptureMIMEType = "audio/pcm;rate=16000"
)

// Config carries the tunable parameters of a Session. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// Model is the realtime model identifier.
	Model string
	// Voice selects the prebuilt synthesis voice.
	Voice string
	// SystemInstruction is the assistant persona sent at connect time.
	SystemInstruction string
	// CaptureSampleRate is the microphone rate in Hz.
	CaptureSampleRate int
	// PlaybackSampleRate is the synthesized audio rate in Hz.
	PlaybackSampleRate int
	// CaptureFrameSize is the number of float32 samples per outbound frame.
	CaptureFrameSize int
}

// DefaultConfig returns the standard session configuration.
func DefaultConfig() Config {
	return Config{
		Model:              DefaultModel,
		Voice:              DefaultVoice,
		SystemInstruction:  DefaultSystemInstruction,
		CaptureSampleRate:  CaptureSampleRate,
		PlaybackSampleRate: PlaybackSampleRate,
		CaptureFrameSize:   CaptureFrameSize,
	}
}
