package live

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDispatcher() (*Dispatcher, *DeviceState) {
	devices := NewDeviceState()
	return NewDispatcher(devices, zap.NewNop()), devices
}

func TestDispatchSetLight(t *testing.T) {
	d, devices := newTestDispatcher()

	res := d.Dispatch(FunctionCall{
		ID:   "call-1",
		Name: FuncSetLight,
		Args: map[string]any{"room": "kitchen", "isOn": true},
	})

	assert.Equal(t, "call-1", res.ID)
	assert.Equal(t, FuncSetLight, res.Name)
	assert.Equal(t, "Light in kitchen turned on.", res.Result)
	assert.True(t, devices.Snapshot().Lights[RoomKitchen])

	res = d.Dispatch(FunctionCall{
		ID:   "call-2",
		Name: FuncSetLight,
		Args: map[string]any{"room": "kitchen", "isOn": false},
	})
	assert.Equal(t, "Light in kitchen turned off.", res.Result)
	assert.False(t, devices.Snapshot().Lights[RoomKitchen])
}

func TestDispatchSetTemperature(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"whole degrees", 25, "Thermostat set to 25 degrees."},
		{"half degrees", 21.5, "Thermostat set to 21.5 degrees."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, devices := newTestDispatcher()
			res := d.Dispatch(FunctionCall{
				ID:   "call-t",
				Name: FuncSetTemperature,
				Args: map[string]any{"value": tt.value},
			})
			assert.Equal(t, tt.want, res.Result)
			assert.Equal(t, tt.value, devices.Snapshot().Temperature)
		})
	}
}

func TestDispatchUnknownFunction(t *testing.T) {
	d, devices := newTestDispatcher()
	before := devices.Snapshot()

	res := d.Dispatch(FunctionCall{ID: "call-x", Name: "open_garage", Args: map[string]any{}})

	assert.Equal(t, "call-x", res.ID)
	assert.Equal(t, "open_garage", res.Name)
	assert.Equal(t, "ok", res.Result)
	assert.Equal(t, before, devices.Snapshot())
}

func TestDispatchMalformedArgs(t *testing.T) {
	tests := []struct {
		name string
		call FunctionCall
	}{
		{
			"unknown room",
			FunctionCall{ID: "c1", Name: FuncSetLight, Args: map[string]any{"room": "garage", "isOn": true}},
		},
		{
			"missing isOn",
			FunctionCall{ID: "c2", Name: FuncSetLight, Args: map[string]any{"room": "kitchen"}},
		},
		{
			"wrong room type",
			FunctionCall{ID: "c3", Name: FuncSetLight, Args: map[string]any{"room": 12, "isOn": true}},
		},
		{
			"missing value",
			FunctionCall{ID: "c4", Name: FuncSetTemperature, Args: map[string]any{}},
		},
		{
			"wrong value type",
			FunctionCall{ID: "c5", Name: FuncSetTemperature, Args: map[string]any{"value": "warm"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, devices := newTestDispatcher()
			before := devices.Snapshot()

			res := d.Dispatch(tt.call)

			assert.Equal(t, tt.call.ID, res.ID)
			assert.Equal(t, "ok", res.Result)
			assert.Equal(t, before, devices.Snapshot())
		})
	}
}

func TestDispatcherNilLogger(t *testing.T) {
	d := NewDispatcher(NewDeviceState(), nil)
	res := d.Dispatch(FunctionCall{ID: "c1", Name: "open_garage"})
	assert.Equal(t, "ok", res.Result)
}

func TestDeviceStateDefaults(t *testing.T) {
	snap := NewDeviceState().Snapshot()

	require.Len(t, snap.Lights, 3)
	for _, room := range Rooms() {
		on, present := snap.Lights[room]
		assert.True(t, present, "room %s missing", room)
		assert.False(t, on, "room %s should start off", room)
	}
	assert.Equal(t, DefaultTemperature, snap.Temperature)
}
