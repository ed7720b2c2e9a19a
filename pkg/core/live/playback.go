package live

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/voxhome/voxhome/pkg/core/audio"
)

// Clock reads the playback timeline in seconds. The production clock is the
// output device's monotonic position.
type Clock interface {
	Now() float64
}

// Handle tracks one scheduled playback unit. Done is closed when the unit
// finishes or is stopped.
type Handle interface {
	Stop()
	Done() <-chan struct{}
}

// Output plays decoded audio buffers at a requested timeline position.
type Output interface {
	Play(buf *audio.Buffer, startAt float64) (Handle, error)
}

// scheduler queues synthesized audio chunks for gapless playback. Each chunk
// is scheduled at the later of the running cursor and the current clock
// position, and the cursor then advances by the chunk's duration, so
// back-to-back chunks play seamlessly while a gap after silence starts
// immediately.
type scheduler struct {
	out        Output
	clock      Clock
	sampleRate int
	channels   int
	onDrained  func()
	logger     *zap.Logger

	mu        sync.Mutex
	nextStart float64
	active    map[Handle]struct{}
}

func newScheduler(out Output, clock Clock, sampleRate, channels int, onDrained func(), logger *zap.Logger) *scheduler {
	return &scheduler{
		out:        out,
		clock:      clock,
		sampleRate: sampleRate,
		channels:   channels,
		onDrained:  onDrained,
		logger:     logger,
		active:     make(map[Handle]struct{}),
	}
}

// ScheduleChunk decodes one base64 PCM chunk and queues it on the timeline.
// Undecodable chunks return an error and leave the cursor untouched.
func (s *scheduler) ScheduleChunk(dataB64 string) error {
	pcm, err := audio.DecodeBase64(dataB64)
	if err != nil {
		return err
	}
	buf := audio.DecodePCM16(pcm, s.sampleRate, s.channels)
	if len(buf.Samples) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if now := s.clock.Now(); s.nextStart < now {
		s.nextStart = now
	}
	h, err := s.out.Play(buf, s.nextStart)
	if err != nil {
		return fmt.Errorf("schedule playback: %w", err)
	}
	s.nextStart += buf.Duration()
	s.active[h] = struct{}{}
	go s.watch(h)
	return nil
}

// watch waits for a unit to finish and fires onDrained when the last active
// unit completes. Units removed by Interrupt never trigger the callback.
func (s *scheduler) watch(h Handle) {
	<-h.Done()

	s.mu.Lock()
	if _, ok := s.active[h]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.active, h)
	drained := len(s.active) == 0
	s.mu.Unlock()

	if drained && s.onDrained != nil {
		s.onDrained()
	}
}

// Interrupt stops every active unit and resets the cursor to the timeline
// origin. The drained callback does not fire for stopped units.
func (s *scheduler) Interrupt() {
	s.mu.Lock()
	stopped := make([]Handle, 0, len(s.active))
	for h := range s.active {
		stopped = append(stopped, h)
	}
	s.active = make(map[Handle]struct{})
	s.nextStart = 0
	s.mu.Unlock()

	for _, h := range stopped {
		h.Stop()
	}
	if len(stopped) > 0 {
		s.logger.Debug("playback interrupted", zap.Int("stopped", len(stopped)))
	}
}

// ActiveCount returns the number of units currently scheduled or playing.
func (s *scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// NextStart returns the current timeline cursor in seconds.
func (s *scheduler) NextStart() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextStart
}
