package workflow

// Kind selects one of the two file lists.
type Kind int

const (
	Documents Kind = iota
	SymptomImages
)

func (k Kind) String() string {
	if k == SymptomImages {
		return "symptom photos"
	}

	return "medical documents"
}

// Intent is a user request raised by a screen. Screens never change the
// workflow themselves; the root model applies intents in order.
type Intent interface {
	isIntent()
}

// ToggleRecording starts or stops the microphone.
type ToggleRecording struct{}

// SetText carries the full description after an edit.
type SetText struct {
	Text string
}

// AddFiles asks for paths to be read into one of the lists.
type AddFiles struct {
	Kind  Kind
	Paths []string
}

// RemoveFile removes the row shown at Index.
type RemoveFile struct {
	Kind  Kind
	Index int
}

// Submit asks for the intake form to be generated.
type Submit struct{}

// Print sends the form to the printer.
type Print struct{}

// Save writes the form to the session directory.
type Save struct{}

// NewIntake discards the form and starts over.
type NewIntake struct{}

func (ToggleRecording) isIntent() {}
func (SetText) isIntent()         {}
func (AddFiles) isIntent()        {}
func (RemoveFile) isIntent()      {}
func (Submit) isIntent()          {}
func (Print) isIntent()           {}
func (Save) isIntent()            {}
func (NewIntake) isIntent()       {}
