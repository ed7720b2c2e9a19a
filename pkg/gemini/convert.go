package gemini

import (
	"google.golang.org/genai"

	"github.com/voxhome/voxhome/pkg/core/audio"
	"github.com/voxhome/voxhome/pkg/core/live"
)

// functionDeclarations returns the device-control tools advertised to the
// model. Names and argument shapes match what the dispatcher executes.
func functionDeclarations() []*genai.FunctionDeclaration {
	rooms := make([]string, 0, len(live.Rooms()))
	for _, room := range live.Rooms() {
		rooms = append(rooms, string(room))
	}

	return []*genai.FunctionDeclaration{
		{
			Name: live.FuncSetLight,
			Parameters: &genai.Schema{
				Type:        genai.TypeObject,
				Description: "Set the state of a specific room light.",
				Properties: map[string]*genai.Schema{
					"room": {
						Type:        genai.TypeString,
						Enum:        rooms,
						Description: "The room name",
					},
					"isOn": {
						Type:        genai.TypeBoolean,
						Description: "True to turn on, false for off",
					},
				},
				Required: []string{"room", "isOn"},
			},
		},
		{
			Name: live.FuncSetTemperature,
			Parameters: &genai.Schema{
				Type:        genai.TypeObject,
				Description: "Set the target temperature of the thermostat.",
				Properties: map[string]*genai.Schema{
					"value": {
						Type:        genai.TypeNumber,
						Description: "Temperature in Celsius",
					},
				},
				Required: []string{"value"},
			},
		},
	}
}

// toServerEvent flattens one server message into the transport event shape.
// Returns false for messages carrying nothing the session acts on.
func toServerEvent(msg *genai.LiveServerMessage) (live.ServerEvent, bool) {
	var ev live.ServerEvent
	interesting := false

	if sc := msg.ServerContent; sc != nil {
		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					ev.Audio = append(ev.Audio, audio.EncodeBase64(part.InlineData.Data))
					interesting = true
				}
			}
		}
		if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
			ev.InputTranscript = sc.InputTranscription.Text
			interesting = true
		}
		if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
			ev.OutputTranscript = sc.OutputTranscription.Text
			interesting = true
		}
		if sc.TurnComplete {
			ev.TurnComplete = true
			interesting = true
		}
		if sc.Interrupted {
			ev.Interrupted = true
			interesting = true
		}
	}

	if tc := msg.ToolCall; tc != nil {
		for _, call := range tc.FunctionCalls {
			if call == nil {
				continue
			}
			ev.ToolCalls = append(ev.ToolCalls, live.FunctionCall{
				ID:   call.ID,
				Name: call.Name,
				Args: call.Args,
			})
			interesting = true
		}
	}

	return ev, interesting
}
