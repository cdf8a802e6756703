package intake

// Phase is the workflow's current macro-state. The concrete types are
// Collecting, Processing and Presenting; each carries only its own data.
type Phase interface {
	// Name returns a short human-readable label.
	Name() string

	isPhase()
}

// Collecting accepts input edits and submissions.
type Collecting struct{}

// Processing waits for the single in-flight submission to resolve.
type Processing struct {
	Status string
}

// Presenting shows the intake form returned by the backend.
type Presenting struct {
	Result Result
}

func (Collecting) Name() string { return "Collecting" }
func (Processing) Name() string { return "Processing" }
func (Presenting) Name() string { return "Presenting" }

func (Collecting) isPhase() {}
func (Processing) isPhase() {}
func (Presenting) isPhase() {}

// Result is what the backend returned for one submission. Form is the
// markdown intake form; the remaining fields are optional metadata.
type Result struct {
	Form                  string
	Transcription         string
	DocumentsAnalyzed     int
	SymptomImagesAnalyzed int
}
