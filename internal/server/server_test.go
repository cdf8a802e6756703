package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/alkime/intake/internal/analysis"
	"github.com/alkime/intake/internal/backend"
	"github.com/alkime/intake/internal/config"
	"github.com/alkime/intake/internal/intake"
	"github.com/alkime/intake/internal/server"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	got *analysis.Request
	res *analysis.Result
	err error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req analysis.Request) (*analysis.Result, error) {
	f.got = &req
	return f.res, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Env:            "test",
		Port:           "8000",
		HSTSMaxAge:     31536000,
		CSPMode:        "relaxed",
		LogLevel:       "info",
		MaxUploadBytes: 1 << 20,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func post(t *testing.T, h http.Handler, sub *intake.Submission) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	contentType := "multipart/form-data; boundary=empty"
	if sub != nil {
		var err error
		contentType, err = sub.Encode(&body)
		require.NoError(t, err)
	} else {
		body.WriteString("--empty--\r\n")
	}

	req := httptest.NewRequest(http.MethodPost, "/intake", &body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	return w
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv := server.New(testConfig(), testLogger(), &fakeAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"intake"}`, w.Body.String())

	_, err := uuid.Parse(w.Header().Get(server.RequestIDHeader))
	require.NoError(t, err, "every response carries a request id")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestIntake_RequestIDEchoed(t *testing.T) {
	t.Parallel()

	srv := server.New(testConfig(), testLogger(), &fakeAnalyzer{})
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(server.RequestIDHeader, id)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, id, w.Header().Get(server.RequestIDHeader))
}

func TestIntake_Success(t *testing.T) {
	t.Parallel()

	analyzer := &fakeAnalyzer{res: &analysis.Result{
		IntakeForm:            "# Patient Intake Form",
		VoiceTranscription:    "hello",
		DocumentsAnalyzed:     1,
		SymptomImagesAnalyzed: 1,
	}}
	srv := server.New(testConfig(), testLogger(), analyzer)

	c := intake.Collection{
		Text:  "chest pain for 3 days",
		Audio: &intake.AudioClip{Data: []byte("mp3"), MIMEType: "audio/mpeg"},
	}
	c.AddDocuments(intake.File{Name: "labs.pdf", Data: []byte("%PDF")})
	c.AddSymptomImages(intake.File{Name: "arm.png", Data: []byte("png")})

	sub, err := intake.Build(c)
	require.NoError(t, err)

	w := post(t, srv.Router(), sub)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp backend.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "# Patient Intake Form", resp.IntakeForm)
	assert.Equal(t, 1, resp.DocumentsAnalyzed)

	got := analyzer.got
	require.NotNil(t, got)
	assert.Equal(t, "chest pain for 3 days", got.Text)
	require.NotNil(t, got.Audio)
	assert.Equal(t, intake.AudioFilename, got.Audio.Name)
	assert.Equal(t, "audio/mpeg", got.Audio.MIMEType)
	assert.Equal(t, []byte("mp3"), got.Audio.Data)
	require.Len(t, got.Documents, 1)
	assert.Equal(t, "application/pdf", got.Documents[0].MIMEType)
	require.Len(t, got.SymptomImages, 1)
	assert.Equal(t, "image/png", got.SymptomImages[0].MIMEType)
}

func TestIntake_Empty(t *testing.T) {
	t.Parallel()

	analyzer := &fakeAnalyzer{}
	srv := server.New(testConfig(), testLogger(), analyzer)

	w := post(t, srv.Router(), nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least one input is required")
	assert.Nil(t, analyzer.got, "nothing to analyze")
}

func TestIntake_AnalysisFailure(t *testing.T) {
	t.Parallel()

	srv := server.New(testConfig(), testLogger(), &fakeAnalyzer{err: errors.New("failed to transcribe audio: quota")})

	sub, err := intake.Build(intake.Collection{Text: "cough"})
	require.NoError(t, err)

	w := post(t, srv.Router(), sub)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"failed to transcribe audio: quota"}`, w.Body.String())
}

// The client posting to the real handler end to end.
func TestIntake_WithBackendClient(t *testing.T) {
	t.Parallel()

	analyzer := &fakeAnalyzer{res: &analysis.Result{IntakeForm: "## Summary"}}
	ts := httptest.NewServer(server.New(testConfig(), testLogger(), analyzer).Router())
	t.Cleanup(ts.Close)

	sub, err := intake.Build(intake.Collection{Text: "chest pain for 3 days"})
	require.NoError(t, err)

	var accepted atomic.Bool
	resp, err := backend.NewClient(ts.URL).Submit(context.Background(), sub, func() { accepted.Store(true) })
	require.NoError(t, err)

	assert.True(t, accepted.Load())
	assert.Equal(t, "## Summary", resp.IntakeForm)
}

func TestStaticFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Intake</h1>"), 0o600))

	cfg := testConfig()
	cfg.StaticDir = dir
	srv := server.New(cfg, testLogger(), &fakeAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Intake</h1>")
}
