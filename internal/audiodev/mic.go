// Package audiodev binds the session's capture and playback contracts to
// real hardware: malgo for the microphone and oto for the speaker.
package audiodev

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
	"go.uber.org/zap"
)

// Microphone captures mono float32 samples from the default input device.
type Microphone struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	logger   *zap.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	buf    []float32
	closed bool
}

// OpenMicrophone acquires the default capture device at the given rate. A
// nil logger disables logging.
func OpenMicrophone(sampleRate int, logger *zap.Logger) (*Microphone, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctxConfig := malgo.ContextConfig{}
	ctxConfig.ThreadPriority = malgo.ThreadPriorityRealtime

	malgoCtx, err := malgo.InitContext(nil, ctxConfig, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	m := &Microphone{
		malgoCtx: malgoCtx,
		logger:   logger,
		buf:      make([]float32, 0, sampleRate),
	}
	m.cond = sync.NewCond(&m.mu)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			samples := bytesToFloat32(input)
			m.mu.Lock()
			m.buf = append(m.buf, samples...)
			m.mu.Unlock()
			m.cond.Signal()
		},
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		malgoCtx.Uninit()
		malgoCtx.Free()
		return nil, fmt.Errorf("init capture device: %w", err)
	}
	m.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		malgoCtx.Uninit()
		malgoCtx.Free()
		return nil, fmt.Errorf("start capture device: %w", err)
	}

	logger.Info("microphone open", zap.Int("sample_rate", sampleRate))
	return m, nil
}

// Read blocks until samples are available or the microphone is closed.
func (m *Microphone) Read(dst []float32) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.buf) == 0 && !m.closed {
		m.cond.Wait()
	}
	if m.closed {
		return 0, io.EOF
	}

	n := copy(dst, m.buf)
	m.buf = m.buf[n:]
	return n, nil
}

// Close releases the capture device. Safe to call more than once; pending
// Reads return io.EOF.
func (m *Microphone) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.cond.Broadcast()
	m.mu.Unlock()

	m.device.Stop()
	m.device.Uninit()
	m.malgoCtx.Uninit()
	m.malgoCtx.Free()
	m.logger.Info("microphone closed")
	return nil
}

func bytesToFloat32(data []byte) []float32 {
	n := len(data) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}
