// Package audio abstracts microphone capture behind small interfaces with
// PulseAudio (linux) and miniaudio (everything else) implementations, plus a
// WAV-replay fake for tests and headless runs.
package audio

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel acquisition failures. Implementations wrap these where the
// platform makes the cause knowable; everything else stays a generic error.
var (
	ErrNoDevice     = errors.New("no capture device")
	ErrAccessDenied = errors.New("microphone access denied")
)

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
}

// IsBluetooth guesses whether a device is a Bluetooth headset by name.
// Telephony-profile capture sounds noticeably worse, so callers warn.
func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID        string // opaque platform-specific identifier
	Name      string
	IsDefault bool
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
}

// Default picks the device to open when the user has not chosen one: the
// platform default if flagged, else the first capture device.
func Default(ctx Context) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrNoDevice
	}
	for i := range devices {
		if devices[i].IsDefault {
			return &devices[i], nil
		}
	}
	return &devices[0], nil
}

// Find matches a capture device by case-insensitive name substring.
func Find(ctx Context, name string) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(name)
	for i := range devices {
		if strings.Contains(strings.ToLower(devices[i].Name), needle) {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("%w matching %q", ErrNoDevice, name)
}
