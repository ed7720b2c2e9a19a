package live

import (
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Room names a controllable light location.
type Room string

const (
	RoomLivingRoom Room = "livingRoom"
	RoomKitchen    Room = "kitchen"
	RoomBedroom    Room = "bedroom"
)

// Rooms lists every controllable room.
func Rooms() []Room {
	return []Room{RoomLivingRoom, RoomKitchen, RoomBedroom}
}

// DefaultTemperature is the thermostat setting before any command, in
// degrees Celsius.
const DefaultTemperature = 22.0

// DeviceSnapshot is a point-in-time copy of the simulated home.
type DeviceSnapshot struct {
	Lights      map[Room]bool `json:"lights"`
	Temperature float64       `json:"temperature"`
}

// DeviceState holds the simulated smart home devices. Safe for concurrent
// use.
type DeviceState struct {
	mu          sync.RWMutex
	lights      map[Room]bool
	temperature float64
}

// NewDeviceState returns a home with all lights off and the thermostat at
// DefaultTemperature.
func NewDeviceState() *DeviceState {
	lights := make(map[Room]bool, len(Rooms()))
	for _, room := range Rooms() {
		lights[room] = false
	}
	return &DeviceState{lights: lights, temperature: DefaultTemperature}
}

// Snapshot returns a copy of the current device state.
func (d *DeviceState) Snapshot() DeviceSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	lights := make(map[Room]bool, len(d.lights))
	for room, on := range d.lights {
		lights[room] = on
	}
	return DeviceSnapshot{Lights: lights, Temperature: d.temperature}
}

func (d *DeviceState) setLight(room Room, on bool) {
	d.mu.Lock()
	d.lights[room] = on
	d.mu.Unlock()
}

func (d *DeviceState) setTemperature(value float64) {
	d.mu.Lock()
	d.temperature = value
	d.mu.Unlock()
}

// Function call names understood by the dispatcher.
const (
	FuncSetLight       = "set_light"
	FuncSetTemperature = "set_temperature"
)

// Dispatcher executes device-control function calls against a DeviceState.
type Dispatcher struct {
	devices *DeviceState
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher over the given device state. A nil
// logger disables logging.
func NewDispatcher(devices *DeviceState, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{devices: devices, logger: logger}
}

// Dispatch executes one function call and returns a result correlated to it
// by ID. Unknown names and malformed arguments mutate nothing and yield a
// generic acknowledgement so the conversation can continue.
func (d *Dispatcher) Dispatch(call FunctionCall) ToolResult {
	result := "ok"

	switch call.Name {
	case FuncSetLight:
		room, okRoom := call.Args["room"].(string)
		isOn, okOn := call.Args["isOn"].(bool)
		if okRoom && okOn && validRoom(Room(room)) {
			d.devices.setLight(Room(room), isOn)
			state := "off"
			if isOn {
				state = "on"
			}
			result = fmt.Sprintf("Light in %s turned %s.", room, state)
			d.logger.Info("light switched",
				zap.String("room", room),
				zap.Bool("on", isOn))
		} else {
			d.logger.Warn("malformed set_light call",
				zap.String("id", call.ID),
				zap.Any("args", call.Args))
		}

	case FuncSetTemperature:
		if value, ok := call.Args["value"].(float64); ok {
			d.devices.setTemperature(value)
			result = fmt.Sprintf("Thermostat set to %s degrees.", formatDegrees(value))
			d.logger.Info("thermostat set", zap.Float64("value", value))
		} else {
			d.logger.Warn("malformed set_temperature call",
				zap.String("id", call.ID),
				zap.Any("args", call.Args))
		}

	default:
		d.logger.Warn("unknown function call",
			zap.String("id", call.ID),
			zap.String("name", call.Name))
	}

	return ToolResult{ID: call.ID, Name: call.Name, Result: result}
}

func validRoom(room Room) bool {
	for _, r := range Rooms() {
		if r == room {
			return true
		}
	}
	return false
}

// formatDegrees renders a temperature without a trailing ".0" for whole
// values, so 22.0 reads as "22" and 21.5 as "21.5".
func formatDegrees(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
