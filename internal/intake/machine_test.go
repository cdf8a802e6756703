package intake_test

import (
	"errors"
	"testing"

	"github.com/alkime/intake/internal/intake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_InitialState(t *testing.T) {
	t.Parallel()

	m := intake.NewMachine()

	assert.Equal(t, intake.Collecting{}, m.Phase())
	assert.True(t, m.Input().IsEmpty())
	assert.Empty(t, m.Error())
	assert.False(t, m.Recording())
}

func TestMachine_SubmitWithNothingEntered(t *testing.T) {
	t.Parallel()

	m := intake.NewMachine()

	sub, err := m.Submit()

	require.ErrorIs(t, err, intake.ErrEmptyInput)
	assert.Nil(t, sub, "nothing must be handed to the transport")
	assert.Equal(t, intake.Collecting{}, m.Phase())
	assert.Equal(t, intake.MsgEmptyInput, m.Error())
}

func TestMachine_ChestPainScenario(t *testing.T) {
	t.Parallel()

	m := intake.NewMachine()
	require.NoError(t, m.SetText("chest pain for 3 days"))

	sub, err := m.Submit()
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, []string{intake.FieldText}, sub.Fields())
	assert.Equal(t, intake.Processing{Status: intake.StatusUploading}, m.Phase())

	require.NoError(t, m.Accepted())
	assert.Equal(t, intake.Processing{Status: intake.StatusAnalyzing}, m.Phase())

	form := "## Summary\n- Chief complaint: chest pain"
	require.NoError(t, m.Succeed(intake.Result{Form: form}))

	presenting, ok := m.Phase().(intake.Presenting)
	require.True(t, ok, "expected Presenting, got %T", m.Phase())
	assert.Equal(t, form, presenting.Result.Form)
	assert.Empty(t, m.Error())
}

func TestMachine_ReentrantSubmitRejected(t *testing.T) {
	t.Parallel()

	m := intake.NewMachine()
	require.NoError(t, m.SetText("cough"))

	_, err := m.Submit()
	require.NoError(t, err)

	sub, err := m.Submit()
	require.ErrorIs(t, err, intake.ErrSubmissionInFlight)
	assert.Nil(t, sub)
	assert.Equal(t, intake.Processing{Status: intake.StatusUploading}, m.Phase())
}

func TestMachine_FailurePreservesInput(t *testing.T) {
	t.Parallel()

	m := intake.NewMachine()
	require.NoError(t, m.SetText("back pain"))
	require.NoError(t, m.RecordingStarted())
	require.NoError(t, m.RecordingFinalized(intake.AudioClip{Data: []byte("clip"), MIMEType: "audio/mpeg"}))
	require.NoError(t, m.AddDocuments(doc("mri.pdf"), doc("mri.pdf")))
	require.NoError(t, m.AddSymptomImages(doc("bruise.jpg")))

	before := m.Input()

	_, err := m.Submit()
	require.NoError(t, err)
	require.NoError(t, m.Accepted())
	require.NoError(t, m.Fail(errors.New("connection refused")))

	assert.Equal(t, intake.Collecting{}, m.Phase())
	assert.Equal(t, intake.MsgProcessingFailed, m.Error())
	assert.Equal(t, before, m.Input())

	// The same input can be resubmitted straight away.
	sub, err := m.Submit()
	require.NoError(t, err)
	assert.Len(t, sub.Parts, 5)
	assert.Empty(t, m.Error())
}

func TestMachine_EditsRejectedOutsideCollecting(t *testing.T) {
	t.Parallel()

	m := intake.NewMachine()
	require.NoError(t, m.SetText("nausea"))
	_, err := m.Submit()
	require.NoError(t, err)

	require.ErrorIs(t, m.SetText("changed"), intake.ErrNotCollecting)
	require.ErrorIs(t, m.AddDocuments(doc("late.pdf")), intake.ErrNotCollecting)
	require.ErrorIs(t, m.AddSymptomImages(doc("late.jpg")), intake.ErrNotCollecting)
	require.ErrorIs(t, m.RemoveDocument(0), intake.ErrNotCollecting)
	require.ErrorIs(t, m.RemoveSymptomImage(0), intake.ErrNotCollecting)
	require.ErrorIs(t, m.ClearAudio(), intake.ErrNotCollecting)
	require.ErrorIs(t, m.SetAudio(intake.AudioClip{}), intake.ErrNotCollecting)
	require.ErrorIs(t, m.RecordingStarted(), intake.ErrNotCollecting)

	assert.Equal(t, intake.Collection{Text: "nausea"}, m.Input())
}

func TestMachine_SubmitWhileRecording(t *testing.T) {
	t.Parallel()

	m := intake.NewMachine()
	require.NoError(t, m.SetText("palpitations"))
	require.NoError(t, m.RecordingStarted())

	sub, err := m.Submit()
	require.ErrorIs(t, err, intake.ErrRecordingActive)
	assert.Nil(t, sub)
	assert.Equal(t, intake.Collecting{}, m.Phase())
	assert.Equal(t, intake.MsgRecordingActive, m.Error())

	require.NoError(t, m.RecordingFinalized(intake.AudioClip{MIMEType: "audio/mpeg"}))
	_, err = m.Submit()
	require.NoError(t, err)
}

func TestMachine_RecordingFailed(t *testing.T) {
	t.Parallel()

	m := intake.NewMachine()
	require.NoError(t, m.SetText("kept"))

	m.RecordingFailed(errors.New("permission denied"))

	assert.Equal(t, intake.MsgDeviceAccess, m.Error())
	assert.False(t, m.Recording())
	assert.Equal(t, intake.Collecting{}, m.Phase())
	assert.Equal(t, "kept", m.Input().Text)
}

func TestMachine_NewRecordingReplacesClip(t *testing.T) {
	t.Parallel()

	m := intake.NewMachine()
	require.NoError(t, m.RecordingFinalized(intake.AudioClip{Data: []byte("one")}))
	require.NoError(t, m.RecordingFinalized(intake.AudioClip{Data: []byte("two")}))

	in := m.Input()
	require.NotNil(t, in.Audio)
	assert.Equal(t, []byte("two"), in.Audio.Data)
}

func TestMachine_ResetFromPresenting(t *testing.T) {
	t.Parallel()

	m := intake.NewMachine()
	require.NoError(t, m.SetText("rash"))
	require.NoError(t, m.AddSymptomImages(doc("arm.jpg")))
	_, err := m.Submit()
	require.NoError(t, err)
	require.NoError(t, m.Succeed(intake.Result{Form: "# Intake"}))

	require.NoError(t, m.Reset())

	assert.Equal(t, intake.Collecting{}, m.Phase())
	assert.True(t, m.Input().IsEmpty())
	assert.Empty(t, m.Error())
}

func TestMachine_InvalidTransitions(t *testing.T) {
	t.Parallel()

	m := intake.NewMachine()

	require.ErrorIs(t, m.Accepted(), intake.ErrInvalidTransition)
	require.ErrorIs(t, m.Succeed(intake.Result{}), intake.ErrInvalidTransition)
	require.ErrorIs(t, m.Fail(errors.New("boom")), intake.ErrInvalidTransition)
	require.ErrorIs(t, m.Reset(), intake.ErrInvalidTransition)
	assert.Equal(t, intake.Collecting{}, m.Phase())

	require.NoError(t, m.SetText("x"))
	_, err := m.Submit()
	require.NoError(t, err)
	require.ErrorIs(t, m.Reset(), intake.ErrInvalidTransition)

	require.NoError(t, m.Succeed(intake.Result{Form: "done"}))
	_, err = m.Submit()
	require.ErrorIs(t, err, intake.ErrInvalidTransition)
	require.ErrorIs(t, m.Fail(errors.New("late")), intake.ErrInvalidTransition)
}

func TestMachine_RemoveByDisplayedIndex(t *testing.T) {
	t.Parallel()

	m := intake.NewMachine()
	require.NoError(t, m.AddDocuments(doc("a.pdf"), doc("b.pdf"), doc("c.pdf")))

	// Two quick removals of the row shown at index 1: the second applies to
	// whatever sits at index 1 after the first one.
	require.NoError(t, m.RemoveDocument(1))
	require.NoError(t, m.RemoveDocument(1))
	require.NoError(t, m.RemoveDocument(1)) // stale, ignored

	in := m.Input()
	require.Len(t, in.Documents, 1)
	assert.Equal(t, "a.pdf", in.Documents[0].Name)
}

func TestMachine_RecordingLostKeepsEarlierClip(t *testing.T) {
	t.Parallel()

	m := intake.NewMachine()
	require.NoError(t, m.RecordingFinalized(intake.AudioClip{Data: []byte("first")}))
	require.NoError(t, m.RecordingStarted())

	m.RecordingLost(errors.New("encoder exploded"))

	assert.False(t, m.Recording())
	assert.Equal(t, intake.MsgRecordingLost, m.Error())
	require.NotNil(t, m.Input().Audio)
	assert.Equal(t, []byte("first"), m.Input().Audio.Data)
}
