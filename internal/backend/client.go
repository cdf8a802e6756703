// Package backend talks to the intake analysis service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptrace"
	"strings"
	"sync"
	"time"

	"github.com/alkime/intake/internal/intake"
	"github.com/google/uuid"
)

const (
	// IntakePath is the analysis endpoint, relative to the base URL.
	IntakePath = "/intake"
	// RequestIDHeader correlates client and server logs.
	RequestIDHeader = "X-Request-ID"

	// DefaultTimeout covers upload plus the multi-step analysis.
	DefaultTimeout = 5 * time.Minute

	maxErrorBody = 4 << 10
)

// TransportError is any failed submission: no connection, a non-2xx status,
// or a body that could not be decoded. StatusCode is zero without a response.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("intake request failed: %v", e.Err)
	}

	return fmt.Sprintf("intake request failed (status %d): %v", e.StatusCode, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Response is the analysis service's JSON reply.
type Response struct {
	IntakeForm            string `json:"intake_form"`
	VoiceTranscription    string `json:"voice_transcription"`
	DocumentsAnalyzed     int    `json:"documents_analyzed"`
	SymptomImagesAnalyzed int    `json:"symptom_images_analyzed"`
}

// Result converts the reply into what the workflow presents.
func (r Response) Result() intake.Result {
	return intake.Result{
		Form:                  r.IntakeForm,
		Transcription:         r.VoiceTranscription,
		DocumentsAnalyzed:     r.DocumentsAnalyzed,
		SymptomImagesAnalyzed: r.SymptomImagesAnalyzed,
	}
}

// ErrorResponse is the service's error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Client posts submissions to the analysis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the whole-request timeout on the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient targets baseURL, e.g. http://localhost:8000.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Submit uploads sub and waits for the analysis. onAccepted, when not nil,
// is called once after the request body has been fully written, which is
// the point the service starts analyzing.
func (c *Client) Submit(ctx context.Context, sub *intake.Submission, onAccepted func()) (*Response, error) {
	if sub == nil || len(sub.Parts) == 0 {
		return nil, intake.ErrEmptyInput
	}

	var body bytes.Buffer
	contentType, err := sub.Encode(&body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to encode submission: %w", err)}
	}

	requestID := uuid.NewString()
	log := slog.With("request_id", requestID)

	if onAccepted != nil {
		var once sync.Once
		ctx = httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
			WroteRequest: func(info httptrace.WroteRequestInfo) {
				if info.Err == nil {
					once.Do(onAccepted)
				}
			},
		})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+IntakePath, &body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	log.Info("submitting intake", "fields", sub.Fields(), "bytes", body.Len())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("intake request failed", "error", err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := statusError(resp)
		log.Error("intake rejected", "status", resp.StatusCode, "error", err)
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Error("undecodable intake response", "error", err)
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}

	log.Info("intake analyzed",
		"documents", out.DocumentsAnalyzed,
		"symptomImages", out.SymptomImagesAnalyzed)

	return &out, nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var e ErrorResponse
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		return errors.New(e.Error)
	}

	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return errors.New(msg)
	}

	return errors.New(http.StatusText(resp.StatusCode))
}
