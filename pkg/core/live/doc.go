// Package live implements realtime voice conversations with a smart home
// assistant.
//
// A Session streams microphone audio upstream, plays synthesized speech back
// with gapless scheduling, accumulates live transcription for both speakers,
// and dispatches device-control function calls against a simulated home.
//
// # Architecture
//
// The package is built from a few small components, each testable in
// isolation:
//
//   - Session: the orchestrator and state machine
//   - capturePipeline: frames microphone samples and sends them upstream
//   - scheduler: queues synthesized audio on the playback timeline
//   - transcriptAccumulator: buffers per-turn transcription deltas
//   - Dispatcher: executes set_light and set_temperature calls
//
// # State Machine
//
// A session moves through these states:
//
//	IDLE → CONNECTING → LISTENING ⇄ SPEAKING
//	              │          │
//	              └──────→ ERROR ←┘
//
// Audio arriving from upstream moves the session to SPEAKING; when the
// playback queue drains, or the user barges in, it returns to LISTENING.
// Stop from any active state returns to IDLE and releases the microphone,
// the upstream link, and any queued playback.
//
// # Usage
//
//	session := live.NewSession(live.DefaultConfig(), transport, speaker, speaker, mic, logger)
//	session.Start(ctx)
//
//	for event := range session.Events() {
//	    switch e := event.(type) {
//	    case *live.TranscriptDeltaEvent:
//	        render(e.Role, e.Text)
//	    case *live.DevicesChangedEvent:
//	        showDevices(e.Devices)
//	    }
//	}
package live
