package audiodev

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"

	"github.com/voxhome/voxhome/pkg/core/audio"
	"github.com/voxhome/voxhome/pkg/core/live"
)

// Speaker plays scheduled audio buffers through the default output device.
// It doubles as the playback clock: Now reports seconds since the speaker
// opened, which the scheduler uses as its timeline.
type Speaker struct {
	otoCtx     *oto.Context
	sampleRate int
	epoch      time.Time
	logger     *zap.Logger
}

// OpenSpeaker opens the default output device for mono 16-bit playback. A
// nil logger disables logging.
func OpenSpeaker(sampleRate int, logger *zap.Logger) (*Speaker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   100 * time.Millisecond,
	}
	otoCtx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	<-ready

	logger.Info("speaker open", zap.Int("sample_rate", sampleRate))
	return &Speaker{
		otoCtx:     otoCtx,
		sampleRate: sampleRate,
		epoch:      time.Now(),
		logger:     logger,
	}, nil
}

// Now returns the playback timeline position in seconds.
func (s *Speaker) Now() float64 {
	return time.Since(s.epoch).Seconds()
}

// Play schedules a buffer at the given timeline position. Positions in the
// past start immediately.
func (s *Speaker) Play(buf *audio.Buffer, startAt float64) (live.Handle, error) {
	h := &playback{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.playUnit(h, buf, startAt)
	return h, nil
}

func (s *Speaker) playUnit(h *playback, buf *audio.Buffer, startAt float64) {
	defer close(h.done)

	if delay := time.Duration((startAt - s.Now()) * float64(time.Second)); delay > 0 {
		select {
		case <-time.After(delay):
		case <-h.stop:
			return
		}
	}

	player := s.otoCtx.NewPlayer(bytes.NewReader(buf.PCM16()))
	player.Play()
	defer player.Close()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ticker.C:
		case <-h.stop:
			player.Pause()
			return
		}
	}
}

// playback tracks one scheduled unit.
type playback struct {
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func (h *playback) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *playback) Done() <-chan struct{} { return h.done }
