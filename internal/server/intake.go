package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/alkime/intake/internal/analysis"
	"github.com/alkime/intake/internal/backend"
	"github.com/alkime/intake/internal/intake"
	"github.com/gin-gonic/gin"
)

// in-memory part of a multipart body; the rest spills to temp files
const multipartMemory = 8 << 20

func (s *Server) handleIntake(c *gin.Context) {
	log := s.logger.With("request_id", RequestID(c.Request.Context()))

	if s.config.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes)
	}

	req, err := decodeRequest(c.Request)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, backend.ErrorResponse{Error: "upload too large"})
			return
		}

		log.Warn("bad intake request", "error", err)
		c.JSON(http.StatusBadRequest, backend.ErrorResponse{Error: err.Error()})

		return
	}

	if req.IsEmpty() {
		c.JSON(http.StatusBadRequest, backend.ErrorResponse{Error: analysis.ErrNoInput.Error()})
		return
	}

	log.Info("analyzing intake",
		"audio", req.Audio != nil,
		"text", req.Text != "",
		"documents", len(req.Documents),
		"symptomImages", len(req.SymptomImages))

	res, err := s.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		log.Error("intake analysis failed", "error", err)
		c.JSON(http.StatusInternalServerError, backend.ErrorResponse{Error: err.Error()})

		return
	}

	c.JSON(http.StatusOK, backend.Response{
		IntakeForm:            res.IntakeForm,
		VoiceTranscription:    res.VoiceTranscription,
		DocumentsAnalyzed:     res.DocumentsAnalyzed,
		SymptomImagesAnalyzed: res.SymptomImagesAnalyzed,
	})
}

func decodeRequest(r *http.Request) (analysis.Request, error) {
	var req analysis.Request

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return req, nil
		}

		return req, fmt.Errorf("failed to parse multipart form: %w", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	form := r.MultipartForm

	if texts := form.Value[intake.FieldText]; len(texts) > 0 {
		req.Text = texts[0]
	}

	if audio := form.File[intake.FieldAudio]; len(audio) > 0 {
		f, err := readUpload(audio[0])
		if err != nil {
			return req, err
		}
		f.MIMEType = audio[0].Header.Get("Content-Type")
		if f.MIMEType == "" || f.MIMEType == "application/octet-stream" {
			f.MIMEType = "audio/mpeg"
		}
		req.Audio = &f
	}

	var err error
	if req.Documents, err = readUploads(form.File[intake.FieldDocuments]); err != nil {
		return req, err
	}

	if req.SymptomImages, err = readUploads(form.File[intake.FieldSymptomImages]); err != nil {
		return req, err
	}

	return req, nil
}

func readUploads(headers []*multipart.FileHeader) ([]intake.File, error) {
	files := make([]intake.File, 0, len(headers))

	for _, h := range headers {
		f, err := readUpload(h)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	return files, nil
}

func readUpload(h *multipart.FileHeader) (intake.File, error) {
	rc, err := h.Open()
	if err != nil {
		return intake.File{}, fmt.Errorf("failed to open upload %s: %w", h.Filename, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return intake.File{}, fmt.Errorf("failed to read upload %s: %w", h.Filename, err)
	}

	return intake.File{
		Name:     h.Filename,
		MIMEType: intake.DetectMIME(h.Filename),
		Data:     data,
	}, nil
}
