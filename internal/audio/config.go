package audio

import (
	"github.com/gen2brain/malgo"
)

// DeviceConfig describes the capture format requested from the driver.
type DeviceConfig struct {
	Format          malgo.FormatType
	CaptureChannels int
	SampleRate      int
}

// DefaultDeviceConfig is signed 16-bit mono at DefaultSampleRate, the only
// layout EncodeMP3 accepts.
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Format:          malgo.FormatS16,
		CaptureChannels: DefaultChannels,
		SampleRate:      DefaultSampleRate,
	}
}
