// Package audio provides PCM conversion helpers shared by the capture and
// playback paths.
//
// The wire format on both legs is 16-bit little-endian PCM carried as base64
// text. Capture produces float32 samples that must be quantized before
// sending; playback receives PCM bytes that must be normalized back to
// float32 before scheduling.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

// Float32ToPCM16 quantizes normalized float32 samples to 16-bit PCM.
// Samples outside [-1, 1] are clamped before scaling.
func Float32ToPCM16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = int16(s * 32767)
	}
	return out
}

// PCM16Bytes serializes 16-bit samples as little-endian bytes.
func PCM16Bytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// EncodeBase64 encodes raw bytes using standard base64.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 decodes standard base64 text back to raw bytes.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64 audio: %w", err)
	}
	return data, nil
}

// Buffer holds decoded PCM audio as normalized float32 samples together with
// the format needed to play it back.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// DecodePCM16 converts little-endian 16-bit PCM bytes into a playable Buffer.
// Sample values are normalized to [-1, 1). A trailing odd byte is ignored.
func DecodePCM16(data []byte, sampleRate, channels int) *Buffer {
	n := len(data) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(v) / 32768.0
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate, Channels: channels}
}

// Duration returns the playback length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 || b.Channels <= 0 {
		return 0
	}
	frames := len(b.Samples) / b.Channels
	return float64(frames) / float64(b.SampleRate)
}

// PCM16 re-quantizes the buffer to little-endian 16-bit PCM bytes. Values
// decoded by DecodePCM16 survive the round trip unchanged.
func (b *Buffer) PCM16() []byte {
	out := make([]byte, len(b.Samples)*2)
	for i, s := range b.Samples {
		v := math.Round(float64(s) * 32768)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}
