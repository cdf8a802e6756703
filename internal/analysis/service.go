// Package analysis turns one patient submission into a doctor-ready intake
// form: speech is transcribed, documents and photos are read, and a chain
// of specialist prompts writes the form.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alkime/intake/internal/intake"
)

// ErrNoInput is returned when a request carries nothing to analyze.
var ErrNoInput = errors.New("at least one input is required: voice, text, or documents")

// Transcriber converts a recorded clip to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio intake.File) (string, error)
}

// Analyst reads uploads and runs text steps.
type Analyst interface {
	AnalyzeDocument(ctx context.Context, doc intake.File) (string, error)
	AnalyzeSymptomImage(ctx context.Context, img intake.File) (string, error)
	Complete(ctx context.Context, system, task string) (string, error)
}

// Request is one decoded submission.
type Request struct {
	Audio         *intake.File
	Text          string
	Documents     []intake.File
	SymptomImages []intake.File
}

// IsEmpty reports whether there is nothing to analyze.
func (r Request) IsEmpty() bool {
	return r.Audio == nil && r.Text == "" && len(r.Documents) == 0 && len(r.SymptomImages) == 0
}

// Result is what the client presents.
type Result struct {
	IntakeForm            string
	VoiceTranscription    string
	DocumentsAnalyzed     int
	SymptomImagesAnalyzed int
}

// Service runs the analysis pipeline.
type Service struct {
	transcriber Transcriber
	analyst     Analyst
}

// NewService wires the pipeline.
func NewService(transcriber Transcriber, analyst Analyst) *Service {
	return &Service{
		transcriber: transcriber,
		analyst:     analyst,
	}
}

// Analyze runs the whole pipeline. The first failing step aborts it.
func (s *Service) Analyze(ctx context.Context, req Request) (*Result, error) {
	if req.IsEmpty() {
		return nil, ErrNoInput
	}

	started := time.Now()

	voiceText, err := s.patientInput(ctx, req)
	if err != nil {
		return nil, err
	}

	documents, err := s.reviewDocuments(ctx, req.Documents)
	if err != nil {
		return nil, err
	}

	symptoms, err := s.reviewSymptomImages(ctx, req.SymptomImages)
	if err != nil {
		return nil, err
	}

	if len(symptoms) > 0 {
		voiceText += "\n\nSymptom Images Analysis: " + strings.Join(symptoms, " | ")
	}

	documentText := NoDocuments
	if len(documents) > 0 {
		documentText = strings.Join(documents, "\n\n")
	}

	form, err := s.writeForm(ctx, voiceText, documentText)
	if err != nil {
		return nil, err
	}

	slog.Info("intake analyzed",
		"documents", len(documents),
		"symptomImages", len(symptoms),
		"elapsed", time.Since(started))

	return &Result{
		IntakeForm:            form,
		VoiceTranscription:    voiceText,
		DocumentsAnalyzed:     len(documents),
		SymptomImagesAnalyzed: len(symptoms),
	}, nil
}

func (s *Service) patientInput(ctx context.Context, req Request) (string, error) {
	voiceText := NoVoiceInput

	if req.Audio != nil {
		slog.Debug("transcribing audio", "name", req.Audio.Name, "bytes", len(req.Audio.Data))

		text, err := s.transcriber.Transcribe(ctx, *req.Audio)
		if err != nil {
			return "", fmt.Errorf("failed to transcribe audio: %w", err)
		}
		voiceText = text
	}

	if req.Text != "" {
		voiceText = fmt.Sprintf("%s\n\nAdditional text input: %s", voiceText, req.Text)
	}

	return voiceText, nil
}

func (s *Service) reviewDocuments(ctx context.Context, docs []intake.File) ([]string, error) {
	var out []string

	for i, doc := range docs {
		if doc.Name == "" {
			continue
		}

		slog.Debug("analyzing document", "name", doc.Name, "mimeType", doc.MIMEType)

		analysis, err := s.analyst.AnalyzeDocument(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze document %s: %w", doc.Name, err)
		}

		out = append(out, fmt.Sprintf("Document %d (%s): %s", i+1, doc.Name, analysis))
	}

	return out, nil
}

func (s *Service) reviewSymptomImages(ctx context.Context, imgs []intake.File) ([]string, error) {
	var out []string

	for i, img := range imgs {
		if img.Name == "" {
			continue
		}

		slog.Debug("analyzing symptom image", "name", img.Name)

		analysis, err := s.analyst.AnalyzeSymptomImage(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze symptom image %s: %w", img.Name, err)
		}

		out = append(out, fmt.Sprintf("Symptom Image %d: %s", i+1, analysis))
	}

	return out, nil
}

// writeForm runs the three independent specialists side by side, then the
// summarizer over their output.
func (s *Service) writeForm(ctx context.Context, voiceText, documentText string) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		basicInfo, documentReview, history string

		wg      sync.WaitGroup
		errOnce sync.Once
		stepErr error
	)

	setError := func(err error) {
		errOnce.Do(func() {
			stepErr = err
			cancel()
		})
	}

	run := func(who Specialist, task string, out *string) {
		wg.Go(func() {
			text, err := s.analyst.Complete(ctx, who.SystemPrompt(), task)
			if err != nil {
				setError(fmt.Errorf("failed to run %s: %w", strings.ToLower(who.Role), err))
				return
			}
			*out = text
		})
	}

	run(intakeSpecialist, basicInfoTask(voiceText), &basicInfo)
	run(documentAnalyst, documentReviewTask(documentText), &documentReview)
	run(historyAnalyst, medicalHistoryTask(voiceText, documentText), &history)

	wg.Wait()

	if stepErr != nil {
		return "", stepErr
	}

	form, err := s.analyst.Complete(ctx, profileSummarizer.SystemPrompt(),
		intakeFormTask(basicInfo, documentReview, history))
	if err != nil {
		return "", fmt.Errorf("failed to write intake form: %w", err)
	}

	return form, nil
}
