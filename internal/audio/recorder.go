package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/alkime/intake/internal/intake"
)

// ErrAlreadyRecording is returned by Start while a session is open.
var ErrAlreadyRecording = errors.New("recording already in progress")

// DeviceAccessError means the microphone could not be acquired or started.
type DeviceAccessError struct {
	Err error
}

func (e *DeviceAccessError) Error() string {
	return fmt.Sprintf("microphone unavailable: %v", e.Err)
}

func (e *DeviceAccessError) Unwrap() error {
	return e.Err
}

// RecorderConfig configures a Recorder. Zero fields take defaults.
type RecorderConfig struct {
	Encoder EncoderConfig

	// MaxBytes caps the captured PCM. Packets past the cap are dropped.
	// Zero means unlimited.
	MaxBytes int64

	// LevelWindow is how many recent samples are kept for ReadSamples.
	LevelWindow int
}

const defaultLevelWindow = 4096

// Recorder captures one microphone session at a time and turns it into a
// single MP3 clip when stopped.
type Recorder struct {
	config    RecorderConfig
	newDevice func() Device

	mu      sync.Mutex
	session *session

	levels   *LevelWindow
	captured atomic.Int64
	dropped  atomic.Bool
}

type session struct {
	dev    Device
	dataC  chan DataPacket
	chunks [][]byte
	done   chan struct{}
}

// NewRecorder builds a Recorder. Each Start acquires a fresh Device from
// newDevice, so no device is held between sessions.
func NewRecorder(conf RecorderConfig, newDevice func() Device) *Recorder {
	conf.Encoder = conf.Encoder.WithDefaults()
	if conf.LevelWindow <= 0 {
		conf.LevelWindow = defaultLevelWindow
	}

	return &Recorder{
		config:    conf,
		newDevice: newDevice,
		levels:    NewLevelWindow(conf.LevelWindow),
	}
}

// NewMicrophoneRecorder is a Recorder on the default capture device.
func NewMicrophoneRecorder(conf RecorderConfig) *Recorder {
	enc := conf.Encoder.WithDefaults()

	return NewRecorder(conf, func() Device {
		return NewDevice(&DeviceConfig{
			Format:          DefaultDeviceConfig().Format,
			CaptureChannels: enc.Channels,
			SampleRate:      enc.SampleRate,
		})
	})
}

// Start acquires the microphone and begins capturing. Failure to acquire
// is reported as a *DeviceAccessError and leaves nothing held.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		return ErrAlreadyRecording
	}

	dev := r.newDevice()
	dataC := make(chan DataPacket, 64)

	if err := dev.CaptureInto(ctx, dataC); err != nil {
		dev.Dealloc(ctx)
		return &DeviceAccessError{Err: err}
	}

	s := &session{
		dev:   dev,
		dataC: dataC,
		done:  make(chan struct{}),
	}

	r.levels.Reset()
	r.captured.Store(0)
	r.dropped.Store(false)

	// the drain must be running before the device delivers its first packet
	go r.drain(s)

	if err := dev.Start(ctx); err != nil {
		dev.Dealloc(ctx)
		close(dataC)
		<-s.done

		return &DeviceAccessError{Err: err}
	}

	r.session = s

	slog.Info("recording started")

	return nil
}

func (r *Recorder) drain(s *session) {
	defer close(s.done)

	for packet := range s.dataC {
		if r.config.MaxBytes > 0 && r.captured.Load()+int64(len(packet)) > r.config.MaxBytes {
			if !r.dropped.Swap(true) {
				slog.Warn("recording limit reached, dropping audio", "maxBytes", r.config.MaxBytes)
			}

			continue
		}

		s.chunks = append(s.chunks, packet)
		r.levels.Write(BytesToInt16(packet))
		r.captured.Add(int64(len(packet)))
	}
}

// Stop ends the session, releases the microphone and returns the encoded
// clip. With no session open it returns nil, nil. The device is released
// even when encoding fails.
func (r *Recorder) Stop(ctx context.Context) (*intake.AudioClip, error) {
	pcm, ok := r.detach(ctx)
	if !ok {
		return nil, nil
	}

	var out bytes.Buffer
	if err := EncodeMP3(pcm, r.config.Encoder, &out); err != nil {
		return nil, fmt.Errorf("failed to encode recording: %w", err)
	}

	slog.Info("recording stopped", "pcmBytes", len(pcm), "mp3Bytes", out.Len(), "limitReached", r.LimitReached())

	return &intake.AudioClip{Data: out.Bytes(), MIMEType: MIMEType}, nil
}

// detach closes the open session and returns its PCM. Encoding happens
// after the lock is released.
func (r *Recorder) detach(ctx context.Context) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.session
	if s == nil {
		return nil, false
	}
	r.session = nil

	if err := s.dev.Stop(ctx); err != nil {
		slog.Error("failed to stop audio device", "error", err)
	}
	s.dev.Dealloc(ctx)

	// the device delivers nothing after Stop, so the drain can finish
	close(s.dataC)
	<-s.done

	return bytes.Join(s.chunks, nil), true
}

// IsRecording reports whether a session is open.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.session != nil
}

// BytesCaptured is the PCM byte count of the current or last session.
func (r *Recorder) BytesCaptured() int64 {
	return r.captured.Load()
}

// LimitReached reports whether the current or last session hit MaxBytes
// and lost the audio that followed.
func (r *Recorder) LimitReached() bool {
	return r.dropped.Load()
}

// ReadSamples returns up to n of the most recent samples.
func (r *Recorder) ReadSamples(n int) []int16 {
	return r.levels.Recent(n)
}
