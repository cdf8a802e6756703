package tui

import (
	"github.com/alkime/intake/internal/backend"
	"github.com/alkime/intake/internal/intake"
	"github.com/alkime/intake/internal/tui/workflow"
)

type recordingStartedMsg struct {
	err error
}

type recordingStoppedMsg struct {
	clip      *intake.AudioClip
	path      string
	truncated bool
	err       error
}

type filesLoadedMsg struct {
	kind  workflow.Kind
	files []intake.File
	err   error
}

// submissionAcceptedMsg and submissionDoneMsg carry the submission number
// so a late event from an earlier attempt is ignored.
type submissionAcceptedMsg struct {
	seq int
}

type submissionDoneMsg struct {
	seq  int
	resp *backend.Response
	err  error
}

type savedMsg struct {
	path string
	err  error
}

type printedMsg struct {
	path string
	err  error
}
