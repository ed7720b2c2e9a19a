// Package gemini adapts the Gemini Live API to the live.Transport contract.
// All genai types stay behind this boundary; the core session never sees
// them.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/voxhome/voxhome/pkg/core/audio"
	"github.com/voxhome/voxhome/pkg/core/live"
)

// Transport connects live sessions to the Gemini Live API.
type Transport struct {
	apiKey string
	logger *zap.Logger
}

// NewTransport creates a transport authenticating with the given API key.
// A nil logger disables logging.
func NewTransport(apiKey string, logger *zap.Logger) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{apiKey: apiKey, logger: logger}
}

// Connect establishes a realtime session and starts decoding server
// messages into live.ServerEvent values.
func (t *Transport) Connect(ctx context.Context, cfg live.ConnectConfig) (live.Conn, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  t.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	session, err := client.Live.Connect(ctx, cfg.Model, liveConnectConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect live session: %w", err)
	}
	t.logger.Info("gemini live session established", zap.String("model", cfg.Model))

	c := &conn{
		session: session,
		events:  make(chan live.ServerEvent, 64),
		logger:  t.logger,
	}
	go c.readLoop()
	return c, nil
}

func liveConnectConfig(cfg live.ConnectConfig) *genai.LiveConnectConfig {
	return &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: cfg.SystemInstruction}},
		},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: cfg.Voice},
			},
		},
		Tools:                    []*genai.Tool{{FunctionDeclarations: functionDeclarations()}},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
}

// conn wraps one genai live session. Writes are serialized; the read loop
// owns the inbound side and closes the event channel when the session ends.
type conn struct {
	session *genai.Session
	events  chan live.ServerEvent
	logger  *zap.Logger

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func (c *conn) SendRealtimeInput(frame live.Frame) error {
	if c.closed.Load() {
		return errors.New("session closed")
	}
	pcm, err := audio.DecodeBase64(frame.DataB64)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: pcm, MIMEType: frame.MIMEType},
	}); err != nil {
		return fmt.Errorf("send realtime input: %w", err)
	}
	return nil
}

func (c *conn) SendToolResponse(result live.ToolResult) error {
	if c.closed.Load() {
		return errors.New("session closed")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.session.SendToolResponse(genai.LiveToolResponseInput{
		FunctionResponses: []*genai.FunctionResponse{{
			ID:       result.ID,
			Name:     result.Name,
			Response: map[string]any{"result": result.Result},
		}},
	}); err != nil {
		return fmt.Errorf("send tool response: %w", err)
	}
	return nil
}

func (c *conn) Events() <-chan live.ServerEvent { return c.events }

func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.session.Close()
	})
	return c.closeErr
}

func (c *conn) readLoop() {
	defer close(c.events)
	for {
		msg, err := c.session.Receive()
		if err != nil {
			if c.closed.Load() || errors.Is(err, io.EOF) {
				return
			}
			c.logger.Warn("live session receive failed", zap.Error(err))
			c.events <- live.ServerEvent{Err: fmt.Errorf("receive: %w", err)}
			return
		}
		if ev, ok := toServerEvent(msg); ok {
			c.events <- ev
		}
	}
}
