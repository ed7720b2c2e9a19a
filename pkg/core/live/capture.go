package live

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/voxhome/voxhome/pkg/core/audio"
)

// capturePipeline reads fixed-size frames from a Source, quantizes them to
// 16-bit PCM, and hands them to a sink in capture order. One pipeline runs
// per session; it owns the source and closes it on exit.
type capturePipeline struct {
	src       Source
	frameSize int
	mimeType  string
	sink      func(Frame) error
	logger    *zap.Logger
}

func newCapturePipeline(src Source, frameSize int, sampleRate int, sink func(Frame) error, logger *zap.Logger) *capturePipeline {
	return &capturePipeline{
		src:       src,
		frameSize: frameSize,
		mimeType:  fmt.Sprintf("audio/pcm;rate=%d", sampleRate),
		sink:      sink,
		logger:    logger,
	}
}

// Run streams frames until the context is canceled or the source fails. The
// source is closed on every exit path. Cancellation is reported as nil; any
// other failure is returned.
func (p *capturePipeline) Run(ctx context.Context) error {
	defer p.src.Close()

	// Unblock a pending Read when the session shuts down.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			p.src.Close()
		case <-stop:
		}
	}()

	p.logger.Debug("capture pipeline running", zap.Int("frame_size", p.frameSize))

	frame := make([]float32, p.frameSize)
	for {
		filled := 0
		for filled < len(frame) {
			n, err := p.src.Read(frame[filled:])
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("read capture source: %w", err)
			}
			filled += n
		}

		pcm := audio.PCM16Bytes(audio.Float32ToPCM16(frame))
		f := Frame{DataB64: audio.EncodeBase64(pcm), MIMEType: p.mimeType}
		if err := p.sink(f); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("send capture frame: %w", err)
		}
	}
}
