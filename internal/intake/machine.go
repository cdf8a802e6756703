package intake

import (
	"errors"
	"log/slog"
)

// Sentinel errors for rejected transitions. A rejected call never changes
// the machine.
var (
	ErrNotCollecting      = errors.New("input can only change while collecting")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrRecordingActive    = errors.New("recording still in progress")
	ErrInvalidTransition  = errors.New("transition not allowed from current phase")
)

// User-facing status and error text.
const (
	StatusUploading = "Uploading your information..."
	StatusAnalyzing = "AI agents are analyzing your information..."

	MsgEmptyInput       = "Please provide at least one input: voice, text, or documents."
	MsgRecordingActive  = "Stop the recording before generating the intake form."
	MsgDeviceAccess     = "Microphone access denied. Please allow microphone access."
	MsgProcessingFailed = "Failed to process intake. Please ensure the backend is running."
	MsgRecordingLost    = "The recording could not be saved. Please record again."
)

// Machine is the intake workflow controller. It owns the input collection
// and the current phase, and every state change goes through one of its
// methods. It is not safe for concurrent use: callers apply one event at a
// time from a single goroutine.
type Machine struct {
	phase     Phase
	input     Collection
	errMsg    string
	recording bool
}

// NewMachine returns a machine in the Collecting phase with empty input.
func NewMachine() *Machine {
	return &Machine{phase: Collecting{}}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Collecting reports whether input may currently be edited.
func (m *Machine) Collecting() bool {
	_, ok := m.phase.(Collecting)
	return ok
}

// Input returns a snapshot of the pending input.
func (m *Machine) Input() Collection {
	return m.input.Clone()
}

// Error returns the banner message for the last failure, or "".
func (m *Machine) Error() string {
	return m.errMsg
}

// Recording reports whether an audio capture session is active.
func (m *Machine) Recording() bool {
	return m.recording
}

// SetText replaces the free-text description.
func (m *Machine) SetText(text string) error {
	return m.edit(func(c *Collection) { c.SetText(text) })
}

// SetAudio attaches a clip that did not come from a live recording, such as
// a file.
func (m *Machine) SetAudio(clip AudioClip) error {
	return m.edit(func(c *Collection) { c.SetAudio(clip) })
}

// ClearAudio drops the recorded clip.
func (m *Machine) ClearAudio() error {
	return m.edit(func(c *Collection) { c.ClearAudio() })
}

// AddDocuments appends documents to the collection.
func (m *Machine) AddDocuments(files ...File) error {
	return m.edit(func(c *Collection) { c.AddDocuments(files...) })
}

// AddSymptomImages appends symptom photos to the collection.
func (m *Machine) AddSymptomImages(files ...File) error {
	return m.edit(func(c *Collection) { c.AddSymptomImages(files...) })
}

// RemoveDocument removes the document at index i as currently stored.
// Stale indexes are ignored.
func (m *Machine) RemoveDocument(i int) error {
	return m.edit(func(c *Collection) { c.RemoveDocument(i) })
}

// RemoveSymptomImage removes the symptom photo at index i as currently
// stored. Stale indexes are ignored.
func (m *Machine) RemoveSymptomImage(i int) error {
	return m.edit(func(c *Collection) { c.RemoveSymptomImage(i) })
}

func (m *Machine) edit(apply func(c *Collection)) error {
	if !m.Collecting() {
		return ErrNotCollecting
	}

	apply(&m.input)

	return nil
}

// RecordingStarted marks the capture session as active.
func (m *Machine) RecordingStarted() error {
	if !m.Collecting() {
		return ErrNotCollecting
	}

	m.recording = true
	m.errMsg = ""

	return nil
}

// RecordingFailed records a device access failure. Input is left alone.
func (m *Machine) RecordingFailed(err error) {
	slog.Warn("recording failed", "error", err)

	m.recording = false
	m.errMsg = MsgDeviceAccess
}

// RecordingLost ends a capture session whose audio could not be finalized.
// Any earlier clip is kept.
func (m *Machine) RecordingLost(err error) {
	slog.Error("recording lost", "error", err)

	m.recording = false
	m.errMsg = MsgRecordingLost
}

// RecordingFinalized stores the finished clip, replacing any earlier one.
func (m *Machine) RecordingFinalized(clip AudioClip) error {
	m.recording = false

	return m.edit(func(c *Collection) { c.SetAudio(clip) })
}

// Submit assembles the pending input and moves to Processing. The returned
// submission must be sent exactly once by the caller, and its outcome
// reported through Succeed or Fail.
func (m *Machine) Submit() (*Submission, error) {
	if _, ok := m.phase.(Processing); ok {
		return nil, ErrSubmissionInFlight
	}

	if !m.Collecting() {
		return nil, ErrInvalidTransition
	}

	if m.recording {
		m.errMsg = MsgRecordingActive
		return nil, ErrRecordingActive
	}

	sub, err := Build(m.input)
	if err != nil {
		m.errMsg = MsgEmptyInput
		return nil, err
	}

	m.errMsg = ""
	m.phase = Processing{Status: StatusUploading}

	return sub, nil
}

// Accepted notes that the transport has written the request. It only
// changes the status text.
func (m *Machine) Accepted() error {
	if _, ok := m.phase.(Processing); !ok {
		return ErrInvalidTransition
	}

	m.phase = Processing{Status: StatusAnalyzing}

	return nil
}

// Succeed stores the backend result and moves to Presenting.
func (m *Machine) Succeed(result Result) error {
	if _, ok := m.phase.(Processing); !ok {
		return ErrInvalidTransition
	}

	m.errMsg = ""
	m.phase = Presenting{Result: result}

	return nil
}

// Fail returns to Collecting after a transport or backend failure. The
// collection is kept exactly as it was so it can be resubmitted.
func (m *Machine) Fail(err error) error {
	if _, ok := m.phase.(Processing); !ok {
		return ErrInvalidTransition
	}

	slog.Error("intake submission failed", "error", err)

	m.errMsg = MsgProcessingFailed
	m.phase = Collecting{}

	return nil
}

// Reset discards the result and input and starts a fresh intake.
func (m *Machine) Reset() error {
	if _, ok := m.phase.(Presenting); !ok {
		return ErrInvalidTransition
	}

	m.input.Clear()
	m.errMsg = ""
	m.recording = false
	m.phase = Collecting{}

	return nil
}
