package analysis_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alkime/intake/internal/analysis"
	"github.com/alkime/intake/internal/intake"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhisperTranscriber_Transcribe(t *testing.T) {
	t.Parallel()

	var model, filename, contentType string
	var data []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		model = r.FormValue("model")

		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		filename = hdr.Filename
		contentType = hdr.Header.Get("Content-Type")
		data, _ = io.ReadAll(f)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"I have had chest pain for three days."}`)
	}))
	t.Cleanup(srv.Close)

	tr := analysis.NewWhisperTranscriber("test-key", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))

	text, err := tr.Transcribe(context.Background(), intake.File{
		Name:     intake.AudioFilename,
		MIMEType: "audio/mpeg",
		Data:     []byte("mp3-bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "I have had chest pain for three days.", text)
	assert.Equal(t, "whisper-1", model)
	assert.Equal(t, intake.AudioFilename, filename)
	assert.Equal(t, "audio/mpeg", contentType)
	assert.Equal(t, []byte("mp3-bytes"), data)
}

func TestWhisperTranscriber_Errors(t *testing.T) {
	t.Parallel()

	clip := intake.File{Name: intake.AudioFilename, Data: []byte("mp3")}

	_, err := analysis.NewWhisperTranscriber("").Transcribe(context.Background(), clip)
	require.ErrorContains(t, err, "API key required")

	_, err = analysis.NewWhisperTranscriber("k").Transcribe(context.Background(), intake.File{Name: "x.mp3"})
	require.ErrorContains(t, err, "audio clip is empty")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	t.Cleanup(srv.Close)

	tr := analysis.NewWhisperTranscriber("k", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	_, err = tr.Transcribe(context.Background(), clip)
	require.ErrorContains(t, err, "failed to create transcription via Whisper API")
}
