// Package tui is the interactive intake client. The root model owns the
// workflow machine and is the only place it changes; screens raise intents
// and blocking work runs in commands that report back as messages.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alkime/intake/internal/intake"
	"github.com/alkime/intake/internal/present"
	"github.com/alkime/intake/internal/tui/workflow"
	"github.com/alkime/intake/internal/workdir"
	"github.com/alkime/intake/pkg/channels"
	"github.com/alkime/intake/pkg/uictl"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// meterSamples is about a tenth of a second at 16 kHz.
const meterSamples = 1600

var errNoClip = errors.New("recorder returned no clip")

const msgRecordingTruncated = "Recording reached its size limit. Audio after that point was not kept; " +
	"record again or add the rest as text."

// Config wires the model to its collaborators. Initial is loaded into the
// collection before the first screen is drawn.
type Config struct {
	Ctx    context.Context
	Cancel context.CancelFunc

	Recorder  Recorder
	Submitter Submitter
	Exporter  Exporter
	Clips     ClipStore
	Renderer  present.Renderer

	Initial intake.Collection
}

// Model is the root Bubble Tea model.
type Model struct {
	cfg     Config
	ctx     context.Context
	keys    keyMap
	machine *intake.Machine

	// events carries messages raised outside the Bubble Tea loop.
	events chan tea.Msg
	seq    int

	mic         workflow.Mic
	previewPath string
	notice      string
	warning     string

	collecting workflow.Collecting
	processing workflow.Processing
	presenting workflow.Presenting
}

// New builds the model. The initial input is applied through the machine
// like any other edit.
func New(cfg Config) *Model {
	ctx := cfg.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	m := &Model{
		cfg:        cfg,
		ctx:        ctx,
		keys:       defaultKeyMap(),
		machine:    intake.NewMachine(),
		events:     make(chan tea.Msg, 4),
		processing: workflow.NewProcessing(),
		presenting: workflow.NewPresenting(cfg.Renderer),
	}

	var (
		levels   uictl.Levels[int16]
		captured uictl.Dial[int64]
	)

	if cfg.Recorder != nil {
		levels = uictl.Window(cfg.Recorder.ReadSamples, meterSamples)
		captured = uictl.DialFunc[int64](cfg.Recorder.BytesCaptured)
	}

	m.collecting = workflow.NewCollecting(levels, captured)

	in := cfg.Initial
	if err := m.machine.SetText(in.Text); err != nil {
		slog.Error("failed to apply initial text", "error", err)
	}

	if len(in.Documents) > 0 {
		if err := m.machine.AddDocuments(in.Documents...); err != nil {
			slog.Error("failed to apply initial documents", "error", err)
		}
	}

	if len(in.SymptomImages) > 0 {
		if err := m.machine.AddSymptomImages(in.SymptomImages...); err != nil {
			slog.Error("failed to apply initial symptom images", "error", err)
		}
	}

	m.collecting, _ = m.collecting.Sync(m.collectingState())

	return m
}

// Phase returns the workflow phase.
func (m *Model) Phase() intake.Phase {
	return m.machine.Phase()
}

// Input returns a copy of the collected input.
func (m *Model) Input() intake.Collection {
	return m.machine.Input()
}

// Init starts the screens and the event listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.collecting.Init(),
		m.processing.Init(),
		m.listen(),
	)
}

// listen waits for one message from outside the loop.
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.events:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Update handles all messages.
//
//nolint:cyclop // one case per message type
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.shutdown()
			return m, tea.Quit
		}

		return m, m.handleKey(msg)

	case recordingStartedMsg:
		return m, m.recordingStarted(msg)

	case recordingStoppedMsg:
		return m, m.recordingStopped(msg)

	case filesLoadedMsg:
		return m, m.filesLoaded(msg)

	case submissionAcceptedMsg:
		if msg.seq == m.seq {
			if err := m.machine.Accepted(); err != nil {
				slog.Debug("late acceptance ignored", "error", err)
			}

			m.processing = m.processing.SetStatus(m.status())
		}

		return m, m.listen()

	case submissionDoneMsg:
		return m, m.submissionDone(msg)

	case savedMsg:
		if msg.err != nil {
			slog.Error("failed to save intake form", "error", msg.err)
			m.presenting = m.presenting.SetWarning(fmt.Sprintf("Could not save: %v", msg.err))
		} else {
			m.presenting = m.presenting.SetNotice("Saved to " + msg.path)
		}

		return m, nil

	case printedMsg:
		if msg.err != nil {
			slog.Error("print command failed", "path", msg.path, "error", msg.err)
			m.presenting = m.presenting.SetWarning(fmt.Sprintf("Printing failed: %v", msg.err))
		} else {
			m.presenting = m.presenting.SetNotice("Sent to printer: " + msg.path)
		}

		return m, nil
	}

	return m, m.broadcast(msg)
}

// broadcast hands non-key messages to every screen so timers and resizes
// keep working while a screen is hidden.
func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	var cmd tea.Cmd
	m.collecting, _, cmd = m.collecting.Update(msg)
	cmds = append(cmds, cmd)

	m.processing, cmd = m.processing.Update(msg)
	cmds = append(cmds, cmd)

	m.presenting, _, cmd = m.presenting.Update(msg)
	cmds = append(cmds, cmd)

	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	var (
		intents []workflow.Intent
		cmd     tea.Cmd
	)

	switch m.machine.Phase().(type) {
	case intake.Collecting:
		m.collecting, intents, cmd = m.collecting.Update(msg)
	case intake.Presenting:
		m.presenting, intents, cmd = m.presenting.Update(msg)
	default:
		return nil
	}

	cmds := []tea.Cmd{cmd}
	for _, intent := range intents {
		cmds = append(cmds, m.apply(intent))
	}

	return tea.Batch(cmds...)
}

//nolint:cyclop // one case per intent
func (m *Model) apply(intent workflow.Intent) tea.Cmd {
	switch intent := intent.(type) {
	case workflow.ToggleRecording:
		return m.toggleRecording()

	case workflow.SetText:
		if err := m.machine.SetText(intent.Text); err != nil {
			slog.Warn("text edit rejected", "error", err)
		}

		return nil

	case workflow.AddFiles:
		m.notice, m.warning = "", ""
		return loadFiles(intent.Kind, intent.Paths)

	case workflow.RemoveFile:
		var err error
		if intent.Kind == workflow.SymptomImages {
			err = m.machine.RemoveSymptomImage(intent.Index)
		} else {
			err = m.machine.RemoveDocument(intent.Index)
		}

		if err != nil {
			slog.Warn("remove rejected", "error", err)
		}

		return m.syncCollecting()

	case workflow.Submit:
		return m.submit()

	case workflow.Save:
		return m.save()

	case workflow.Print:
		return m.print()

	case workflow.NewIntake:
		return m.reset()
	}

	return nil
}

func (m *Model) toggleRecording() tea.Cmd {
	switch m.mic {
	case workflow.MicIdle:
		if m.cfg.Recorder == nil {
			m.machine.RecordingFailed(errors.New("no recorder configured"))
			return m.syncCollecting()
		}

		// recording counts from the request; Submit is refused while the
		// device opens
		if err := m.machine.RecordingStarted(); err != nil {
			slog.Warn("recording rejected", "error", err)
			return nil
		}

		m.mic = workflow.MicStarting
		rec, ctx := m.cfg.Recorder, m.ctx

		return tea.Batch(m.syncCollecting(), func() tea.Msg {
			return recordingStartedMsg{err: rec.Start(ctx)}
		})

	case workflow.MicRecording:
		m.mic = workflow.MicStopping
		rec, ctx, clips := m.cfg.Recorder, m.ctx, m.cfg.Clips

		return tea.Batch(m.syncCollecting(), func() tea.Msg {
			return stopRecording(ctx, rec, clips)
		})

	case workflow.MicStarting, workflow.MicStopping:
	}

	return nil
}

func stopRecording(ctx context.Context, rec Recorder, clips ClipStore) recordingStoppedMsg {
	clip, err := rec.Stop(ctx)
	if err != nil {
		return recordingStoppedMsg{err: err}
	}

	if clip == nil {
		return recordingStoppedMsg{err: errNoClip}
	}

	out := recordingStoppedMsg{clip: clip, truncated: rec.LimitReached()}

	if clips != nil {
		path, err := clips.Write(workdir.PreviewFile, clip.Data)
		if err != nil {
			slog.Warn("failed to write recording preview", "error", err)
		} else {
			out.path = path
		}
	}

	return out
}

func (m *Model) recordingStarted(msg recordingStartedMsg) tea.Cmd {
	if msg.err != nil {
		slog.Error("failed to start recording", "error", msg.err)
		m.mic = workflow.MicIdle
		m.machine.RecordingFailed(msg.err)

		return m.syncCollecting()
	}

	slog.Info("recording started")
	m.mic = workflow.MicRecording
	m.notice, m.warning = "", ""

	return m.syncCollecting()
}

func (m *Model) recordingStopped(msg recordingStoppedMsg) tea.Cmd {
	m.mic = workflow.MicIdle

	if msg.err != nil {
		slog.Error("failed to finish recording", "error", msg.err)
		m.machine.RecordingLost(msg.err)

		return m.syncCollecting()
	}

	if err := m.machine.RecordingFinalized(*msg.clip); err != nil {
		slog.Error("recording finished outside collecting", "error", err)
		return m.syncCollecting()
	}

	slog.Info("recording finished", "bytes", len(msg.clip.Data), "preview", msg.path, "truncated", msg.truncated)
	m.previewPath = msg.path

	if msg.truncated {
		m.warning = msgRecordingTruncated
	}

	return m.syncCollecting()
}

func loadFiles(kind workflow.Kind, paths []string) tea.Cmd {
	return func() tea.Msg {
		files, err := intake.LoadFiles(paths...)
		return filesLoadedMsg{kind: kind, files: files, err: err}
	}
}

func (m *Model) filesLoaded(msg filesLoadedMsg) tea.Cmd {
	if msg.err != nil {
		slog.Warn("failed to load files", "kind", msg.kind.String(), "error", msg.err)
		m.warning = fmt.Sprintf("Could not add file: %v", msg.err)

		return m.syncCollecting()
	}

	var err error
	if msg.kind == workflow.SymptomImages {
		err = m.machine.AddSymptomImages(msg.files...)
	} else {
		err = m.machine.AddDocuments(msg.files...)
	}

	if err != nil {
		slog.Warn("files arrived outside collecting", "error", err)
		return nil
	}

	m.notice = fmt.Sprintf("Added %d to %s", len(msg.files), msg.kind)

	return m.syncCollecting()
}

func (m *Model) submit() tea.Cmd {
	sub, err := m.machine.Submit()
	if err != nil {
		slog.Info("submission rejected", "error", err)
		return m.syncCollecting()
	}

	m.seq++
	seq := m.seq
	m.notice, m.warning = "", ""

	slog.Info("submitting intake", "seq", seq, "fields", sub.Fields(), "phase", m.machine.Phase().Name())

	var startCmd tea.Cmd
	m.processing, startCmd = m.processing.Start(m.status())

	submitter, ctx, events := m.cfg.Submitter, m.ctx, m.events
	send := func() tea.Msg {
		resp, err := submitter.Submit(ctx, sub, func() {
			if err := channels.SendNonBlock(events, tea.Msg(submissionAcceptedMsg{seq: seq})); err != nil {
				slog.Warn("dropped acceptance event", "seq", seq, "error", err)
			}
		})

		return submissionDoneMsg{seq: seq, resp: resp, err: err}
	}

	return tea.Batch(startCmd, send)
}

func (m *Model) submissionDone(msg submissionDoneMsg) tea.Cmd {
	if msg.seq != m.seq {
		return nil
	}

	var stopCmd tea.Cmd
	m.processing, stopCmd = m.processing.Stop()

	if msg.err == nil && msg.resp == nil {
		msg.err = errors.New("empty response")
	}

	if msg.err != nil {
		slog.Error("intake submission failed", "seq", msg.seq, "error", msg.err)

		if err := m.machine.Fail(msg.err); err != nil {
			slog.Error("failure outside processing", "error", err)
		}

		return tea.Batch(stopCmd, m.syncCollecting())
	}

	result := msg.resp.Result()
	if err := m.machine.Succeed(result); err != nil {
		slog.Error("result outside processing", "error", err)
		return stopCmd
	}

	slog.Info("intake form received", "seq", msg.seq, "phase", m.machine.Phase().Name())
	m.presenting = m.presenting.Show(result)

	return stopCmd
}

func (m *Model) form() (string, bool) {
	p, ok := m.machine.Phase().(intake.Presenting)
	if !ok {
		return "", false
	}

	return p.Result.Form, true
}

func (m *Model) save() tea.Cmd {
	form, ok := m.form()
	if !ok || m.cfg.Exporter == nil {
		return nil
	}

	exp := m.cfg.Exporter

	return func() tea.Msg {
		path, err := exp.Save(form)
		return savedMsg{path: path, err: err}
	}
}

func (m *Model) print() tea.Cmd {
	form, ok := m.form()
	if !ok || m.cfg.Exporter == nil {
		return nil
	}

	cmd, path, err := m.cfg.Exporter.PrintCommand(m.ctx, form)
	if err != nil {
		return func() tea.Msg { return printedMsg{path: path, err: err} }
	}

	slog.Info("printing intake form", "cmd", cmd.String())

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return printedMsg{path: path, err: err}
	})
}

func (m *Model) reset() tea.Cmd {
	if err := m.machine.Reset(); err != nil {
		slog.Warn("reset rejected", "error", err)
		return nil
	}

	m.removePreview()
	m.notice, m.warning = "", ""

	return m.syncCollecting()
}

func (m *Model) removePreview() {
	if m.previewPath == "" || m.cfg.Clips == nil {
		return
	}

	if err := m.cfg.Clips.Remove(workdir.PreviewFile); err != nil {
		slog.Warn("failed to remove recording preview", "error", err)
	}

	m.previewPath = ""
}

// shutdown releases the microphone and the preview file before exit.
func (m *Model) shutdown() {
	if m.mic != workflow.MicIdle && m.cfg.Recorder != nil {
		if _, err := m.cfg.Recorder.Stop(m.ctx); err != nil {
			slog.Warn("failed to stop recorder on exit", "error", err)
		}
	}

	m.removePreview()

	if m.cfg.Cancel != nil {
		m.cfg.Cancel()
	}
}

func (m *Model) status() string {
	if p, ok := m.machine.Phase().(intake.Processing); ok {
		return p.Status
	}

	return ""
}

func (m *Model) collectingState() workflow.CollectingState {
	return workflow.CollectingState{
		Input:       m.machine.Input(),
		Mic:         m.mic,
		Banner:      m.machine.Error(),
		Notice:      m.notice,
		Warning:     m.warning,
		PreviewPath: m.previewPath,
	}
}

func (m *Model) syncCollecting() tea.Cmd {
	var cmd tea.Cmd
	m.collecting, cmd = m.collecting.Sync(m.collectingState())

	return cmd
}

// View renders the screen for the current phase.
func (m *Model) View() string {
	switch m.machine.Phase().(type) {
	case intake.Processing:
		return m.processing.View()
	case intake.Presenting:
		return m.presenting.View()
	default:
		return m.collecting.View()
	}
}
