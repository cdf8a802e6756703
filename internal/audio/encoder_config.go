package audio

import "errors"

const (
	// DefaultBatchBytes is 4KB = 2048 mono samples = 128ms @ 16kHz.
	DefaultBatchBytes = 4096
	// DefaultSampleRate is 16kHz, the rate the transcription service works at.
	DefaultSampleRate = 16000
	// DefaultChannels is mono.
	DefaultChannels = 1
)

// EncoderConfig configures EncodeMP3.
type EncoderConfig struct {
	// SampleRate in Hz.
	SampleRate int

	// Channels must be 1. The encoder is fed duplicated stereo internally.
	Channels int

	// BatchBytes is how much PCM is handed to the encoder per write.
	BatchBytes int
}

// Validate returns an error if the config is unusable.
func (c EncoderConfig) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}

	if c.Channels != 1 {
		return errors.New("only mono (1 channel) is supported")
	}

	if c.BatchBytes <= 0 || c.BatchBytes%2 != 0 {
		return errors.New("batch size must be a positive, even number of bytes")
	}

	return nil
}

// WithDefaults fills zero fields.
func (c EncoderConfig) WithDefaults() EncoderConfig {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}

	if c.Channels == 0 {
		c.Channels = DefaultChannels
	}

	if c.BatchBytes == 0 {
		c.BatchBytes = DefaultBatchBytes
	}

	return c
}
