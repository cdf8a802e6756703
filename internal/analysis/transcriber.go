package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/alkime/intake/internal/intake"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// WhisperTranscriber turns recorded speech into text with Whisper.
type WhisperTranscriber struct {
	apiKey string
	opts   []option.RequestOption
}

// NewWhisperTranscriber creates a transcription client. Extra options are
// passed to every request.
func NewWhisperTranscriber(apiKey string, opts ...option.RequestOption) *WhisperTranscriber {
	return &WhisperTranscriber{
		apiKey: apiKey,
		opts:   opts,
	}
}

// Transcribe sends the clip to Whisper.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audio intake.File) (string, error) {
	if t.apiKey == "" {
		return "", errors.New("API key required: set OPENAI_API_KEY or use intake config set-key")
	}

	if len(audio.Data) == 0 {
		return "", errors.New("audio clip is empty")
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(t.apiKey)}, t.opts...)...)

	mimeType := audio.MIMEType
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}

	params := openai.AudioTranscriptionNewParams{
		File:   openai.File(bytes.NewReader(audio.Data), audio.Name, mimeType),
		Model:  openai.AudioModelWhisper1,
		Prompt: openai.String(TranscriptionPrompt),
	}

	resp, err := client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create transcription via Whisper API: %w", err)
	}

	return resp.Text, nil
}
