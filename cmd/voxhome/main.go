// Command voxhome is a voice-driven smart home assistant. It streams
// microphone audio to the Gemini Live API, plays the spoken replies, shows
// live transcription, and executes light and thermostat commands against a
// simulated home. A WebSocket feed mirrors the conversation for external
// shells.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/voxhome/voxhome/internal/audiodev"
	"github.com/voxhome/voxhome/internal/feed"
	"github.com/voxhome/voxhome/pkg/core/live"
	"github.com/voxhome/voxhome/pkg/gemini"
)

func main() {
	model := flag.String("model", live.DefaultModel, "realtime model identifier")
	voice := flag.String("voice", live.DefaultVoice, "synthesis voice name")
	feedAddr := flag.String("feed", "localhost:8765", "feed listen address, empty to disable")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	godotenv.Load()

	logger := newLogger(*debug)
	defer logger.Sync()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		logger.Fatal("GEMINI_API_KEY is not set")
	}

	cfg := live.DefaultConfig()
	cfg.Model = *model
	cfg.Voice = *voice

	speaker, err := audiodev.OpenSpeaker(cfg.PlaybackSampleRate, logger)
	if err != nil {
		logger.Fatal("open speaker", zap.Error(err))
	}

	mic := func(context.Context) (live.Source, error) {
		return audiodev.OpenMicrophone(cfg.CaptureSampleRate, logger)
	}

	transport := gemini.NewTransport(apiKey, logger)
	session := live.NewSession(cfg, transport, speaker, speaker, mic, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		fmt.Println("\nshutting down")
		cancel()
	}()

	server := feed.NewServer(session, logger)
	if *feedAddr != "" {
		go func() {
			if err := server.Run(ctx, *feedAddr); err != nil {
				logger.Error("feed server stopped", zap.Error(err))
			}
		}()
	}

	go renderEvents(ctx, session, server)

	printBanner(*model, *voice, *feedAddr)

	if err := session.Start(ctx); err != nil {
		logger.Fatal("start session", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		commandLoop(ctx, cancel, session)
		close(done)
	}()

	select {
	case <-ctx.Done():
	case <-done:
	}
	session.Stop()
}

func newLogger(debug bool) *zap.Logger {
	if debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return logger
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func printBanner(model, voice, feedAddr string) {
	fmt.Println("voxhome - voice smart home assistant")
	fmt.Printf("  model: %s  voice: %s\n", model, voice)
	if feedAddr != "" {
		fmt.Printf("  feed:  ws://%s/ws\n", feedAddr)
	}
	fmt.Println("  commands: start | stop | clear | state | devices | history | quit")
	fmt.Println()
}

// renderEvents drives the terminal display and mirrors every event to the
// feed.
func renderEvents(ctx context.Context, session *live.Session, server *feed.Server) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-session.Events():
			server.Publish(ev)
			renderEvent(ev)
		}
	}
}

func renderEvent(ev live.Event) {
	switch e := ev.(type) {
	case *live.StateChangedEvent:
		fmt.Printf("\n== %s\n", e.To.StatusText())
	case *live.TranscriptDeltaEvent:
		if e.Text != "" {
			fmt.Printf("\r%s: %s", e.Role, e.Text)
		}
	case *live.EntriesCommittedEvent:
		fmt.Println()
		for _, entry := range e.Entries {
			fmt.Printf("[%s] %s: %s\n",
				entry.Timestamp.Format("15:04:05"), entry.Role, entry.Text)
		}
	case *live.ToolInvokedEvent:
		fmt.Printf("\n-> %s: %s\n", e.Name, e.Result)
	case *live.DevicesChangedEvent:
		printDevices(e.Devices)
	case *live.ErrorEvent:
		fmt.Printf("\n!! %s\n", e.Message)
	}
}

func printDevices(devices live.DeviceSnapshot) {
	var lights []string
	for _, room := range live.Rooms() {
		state := "off"
		if devices.Lights[room] {
			state = "on"
		}
		lights = append(lights, fmt.Sprintf("%s=%s", room, state))
	}
	fmt.Printf("   home: %s, thermostat=%.1f\n", strings.Join(lights, " "), devices.Temperature)
}

func commandLoop(ctx context.Context, cancel context.CancelFunc, session *live.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			return
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "start":
			session.Start(ctx)
		case "stop":
			session.Stop()
		case "clear":
			session.ClearHistory()
			fmt.Println("history cleared")
		case "state":
			st := session.State()
			fmt.Printf("%s (%s)\n", st, st.StatusText())
		case "devices":
			printDevices(session.Devices())
		case "history":
			for _, entry := range session.History() {
				fmt.Printf("[%s] %s: %s\n",
					entry.Timestamp.Format("15:04:05"), entry.Role, entry.Text)
			}
		case "quit", "exit":
			cancel()
			return
		case "":
		default:
			fmt.Println("commands: start | stop | clear | state | devices | history | quit")
		}
	}
}
