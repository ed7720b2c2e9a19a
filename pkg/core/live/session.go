package live

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Session orchestrates one voice conversation at a time: microphone capture,
// the upstream realtime link, playback scheduling, transcription, and device
// control. A Session is reusable; Start after Stop or a failure opens a
// fresh conversation with empty turn buffers, while the transcript history
// and device state persist across runs.
type Session struct {
	cfg       Config
	transport Transport
	output    Output
	clock     Clock
	mic       SourceFactory
	logger    *zap.Logger

	devices    *DeviceState
	dispatcher *Dispatcher

	events chan Event

	mu      sync.Mutex
	state   State
	gen     uint64
	cancel  context.CancelFunc
	conn    Conn
	sched   *scheduler
	acc     transcriptAccumulator
	history []Entry
}

// NewSession wires a session from its collaborators. The clock must be the
// playback timeline of the output device. A nil logger disables logging.
func NewSession(cfg Config, transport Transport, output Output, clock Clock, mic SourceFactory, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	devices := NewDeviceState()
	return &Session{
		cfg:        cfg,
		transport:  transport,
		output:     output,
		clock:      clock,
		mic:        mic,
		logger:     logger,
		devices:    devices,
		dispatcher: NewDispatcher(devices, logger),
		events:     make(chan Event, 128),
		state:      StateIdle,
	}
}

// Events returns the session's notification stream. Events are dropped
// rather than block when the consumer falls behind.
func (s *Session) Events() <-chan Event { return s.events }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the committed transcript.
func (s *Session) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.history))
	copy(out, s.history)
	return out
}

// CurrentTranscripts returns the in-progress turn text for the user and the
// assistant.
func (s *Session) CurrentTranscripts() (input, output string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acc.Input(), s.acc.Output()
}

// Devices returns a snapshot of the simulated home.
func (s *Session) Devices() DeviceSnapshot {
	return s.devices.Snapshot()
}

// ClearHistory discards the committed transcript. In-progress turn buffers
// are untouched.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	s.history = nil
	s.emit(&HistoryClearedEvent{})
	s.mu.Unlock()
}

// Start opens a new conversation. It returns immediately; progress is
// reported through the event stream. Calling Start while a session is
// already running is a no-op.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Active() {
		s.mu.Unlock()
		return nil
	}
	s.gen++
	gen := s.gen
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.acc.Reset()
	s.setStateLocked(StateConnecting)
	s.mu.Unlock()

	go s.run(runCtx, gen)
	return nil
}

// Stop ends the current conversation and releases the microphone, upstream
// link, and any queued playback. Stopping an idle session is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	gen := s.gen
	active := s.state.Active()
	s.mu.Unlock()
	if !active {
		return
	}
	s.shutdown(gen, StateIdle)
}

func (s *Session) run(ctx context.Context, gen uint64) {
	src, err := s.mic(ctx)
	if err != nil {
		s.fail(gen, fmt.Errorf("open microphone: %w", err))
		return
	}

	conn, err := s.transport.Connect(ctx, ConnectConfig{
		Model:             s.cfg.Model,
		Voice:             s.cfg.Voice,
		SystemInstruction: s.cfg.SystemInstruction,
	})
	if err != nil {
		src.Close()
		s.fail(gen, fmt.Errorf("connect: %w", err))
		return
	}

	sched := newScheduler(s.output, s.clock, s.cfg.PlaybackSampleRate, 1,
		func() { s.onPlaybackDrained(gen) }, s.logger)

	s.mu.Lock()
	if gen != s.gen {
		// Stopped while connecting.
		s.mu.Unlock()
		src.Close()
		conn.Close()
		return
	}
	s.conn = conn
	s.sched = sched
	s.setStateLocked(StateListening)
	s.mu.Unlock()

	pipe := newCapturePipeline(src, s.cfg.CaptureFrameSize, s.cfg.CaptureSampleRate,
		conn.SendRealtimeInput, s.logger)
	go func() {
		if err := pipe.Run(ctx); err != nil {
			s.fail(gen, fmt.Errorf("capture: %w", err))
		}
	}()

	s.logger.Info("session started",
		zap.String("model", s.cfg.Model),
		zap.String("voice", s.cfg.Voice))

	for {
		select {
		case <-ctx.Done():
			s.shutdown(gen, StateIdle)
			return
		case ev, ok := <-conn.Events():
			if !ok {
				s.logger.Info("upstream closed the session")
				s.shutdown(gen, StateIdle)
				return
			}
			if ev.Err != nil {
				s.fail(gen, ev.Err)
				return
			}
			s.handleServerEvent(gen, conn, sched, ev)
		}
	}
}

func (s *Session) handleServerEvent(gen uint64, conn Conn, sched *scheduler, ev ServerEvent) {
	for _, chunk := range ev.Audio {
		s.mu.Lock()
		if gen != s.gen {
			// Stopped while this event was in flight; drop the audio.
			s.mu.Unlock()
			return
		}
		err := sched.ScheduleChunk(chunk)
		if err == nil {
			s.emit(&AudioChunkEvent{DataB64: chunk})
			if s.state == StateListening || s.state == StateThinking {
				s.setStateLocked(StateSpeaking)
			}
		}
		s.mu.Unlock()
		if err != nil {
			s.logger.Warn("dropping audio chunk", zap.Error(err))
		}
	}

	if ev.InputTranscript != "" || ev.OutputTranscript != "" {
		s.mu.Lock()
		if gen == s.gen {
			if ev.InputTranscript != "" {
				s.acc.AppendInput(ev.InputTranscript)
				s.emit(&TranscriptDeltaEvent{Role: RoleUser, Text: s.acc.Input()})
			}
			if ev.OutputTranscript != "" {
				s.acc.AppendOutput(ev.OutputTranscript)
				s.emit(&TranscriptDeltaEvent{Role: RoleAssistant, Text: s.acc.Output()})
			}
		}
		s.mu.Unlock()
	}

	for _, call := range ev.ToolCalls {
		result := s.dispatcher.Dispatch(call)
		if err := conn.SendToolResponse(result); err != nil {
			s.logger.Warn("tool response not delivered",
				zap.String("call", call.Name), zap.Error(err))
		}
		s.mu.Lock()
		if gen == s.gen {
			s.emit(&ToolInvokedEvent{Name: result.Name, Result: result.Result})
			s.emit(&DevicesChangedEvent{Devices: s.devices.Snapshot()})
		}
		s.mu.Unlock()
	}

	if ev.TurnComplete {
		s.mu.Lock()
		if gen == s.gen {
			if entries := s.acc.Commit(time.Now()); len(entries) > 0 {
				s.history = append(s.history, entries...)
				s.emit(&EntriesCommittedEvent{Entries: entries})
			}
			s.emit(&TranscriptDeltaEvent{Role: RoleUser, Text: ""})
			s.emit(&TranscriptDeltaEvent{Role: RoleAssistant, Text: ""})
		}
		s.mu.Unlock()
	}

	if ev.Interrupted {
		sched.Interrupt()
		s.mu.Lock()
		if gen == s.gen && s.state == StateSpeaking {
			s.setStateLocked(StateListening)
		}
		s.mu.Unlock()
	}
}

// onPlaybackDrained returns the session to listening once the last queued
// audio finishes. Stale generations are ignored.
func (s *Session) onPlaybackDrained(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen && s.state == StateSpeaking {
		s.setStateLocked(StateListening)
	}
}

func (s *Session) fail(gen uint64, err error) {
	s.mu.Lock()
	stale := gen != s.gen
	s.mu.Unlock()
	if stale {
		return
	}
	s.logger.Error("session failed", zap.Error(err))
	s.emit(&ErrorEvent{Message: err.Error()})
	s.shutdown(gen, StateError)
}

// shutdown tears down the running generation and moves to the final state.
// Returns false when the generation has already been superseded.
func (s *Session) shutdown(gen uint64, final State) bool {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return false
	}
	s.gen++
	cancel := s.cancel
	conn := s.conn
	sched := s.sched
	s.cancel = nil
	s.conn = nil
	s.sched = nil
	s.acc.Reset()
	s.setStateLocked(final)
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sched != nil {
		sched.Interrupt()
	}
	if conn != nil {
		conn.Close()
	}
	return true
}

// setStateLocked transitions the state and emits the change. Callers hold
// s.mu.
func (s *Session) setStateLocked(to State) {
	if s.state == to {
		return
	}
	from := s.state
	s.state = to
	s.logger.Debug("state changed",
		zap.Stringer("from", from),
		zap.Stringer("to", to))
	s.emit(&StateChangedEvent{From: from, To: to})
}

// emit delivers an event without blocking; slow consumers lose events.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
