package tui

import (
	"context"
	"os/exec"

	"github.com/alkime/intake/internal/backend"
	"github.com/alkime/intake/internal/intake"
)

// Recorder captures one voice clip per Start/Stop cycle. LimitReached
// reports whether the last clip was cut short by the size cap.
type Recorder interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (*intake.AudioClip, error)
	BytesCaptured() int64
	ReadSamples(n int) []int16
	LimitReached() bool
}

// Submitter sends a submission to the analysis backend. onAccepted fires
// once the request has been fully written.
type Submitter interface {
	Submit(ctx context.Context, sub *intake.Submission, onAccepted func()) (*backend.Response, error)
}

// Exporter saves and prints the intake form.
type Exporter interface {
	Save(markdown string) (string, error)
	PrintCommand(ctx context.Context, markdown string) (*exec.Cmd, string, error)
}

// ClipStore keeps the preview copy of the current recording.
type ClipStore interface {
	Write(name string, data []byte) (string, error)
	Remove(name string) error
}
