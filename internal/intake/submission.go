package intake

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Multipart field names understood by the analysis backend.
const (
	FieldAudio         = "audio"
	FieldText          = "text_input"
	FieldDocuments     = "documents"
	FieldSymptomImages = "symptom_images"

	// AudioFilename is the filename the recorded clip is uploaded under.
	AudioFilename = "patient_input.mp3"
)

// ErrEmptyInput is returned by Build when the collection has no input source.
var ErrEmptyInput = errors.New("at least one input is required")

// Part is one multipart field of a submission. File parts carry a filename;
// the text part only carries Value.
type Part struct {
	Field    string
	Filename string
	MIMEType string
	Data     []byte
	Value    string
}

// IsFile reports whether the part is uploaded as a file.
func (p Part) IsFile() bool {
	return p.Filename != ""
}

// Submission is the payload assembled from one collection snapshot.
type Submission struct {
	Parts []Part
}

// Build packages the collection into a submission. Parts are ordered audio,
// text, documents, symptom images, and each file set keeps collection order.
func Build(c Collection) (*Submission, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyInput
	}

	parts := make([]Part, 0, 2+len(c.Documents)+len(c.SymptomImages))

	if c.Audio != nil {
		parts = append(parts, Part{
			Field:    FieldAudio,
			Filename: AudioFilename,
			MIMEType: c.Audio.MIMEType,
			Data:     c.Audio.Data,
		})
	}

	if c.Text != "" {
		parts = append(parts, Part{Field: FieldText, Value: c.Text})
	}

	for _, f := range c.Documents {
		parts = append(parts, filePart(FieldDocuments, f))
	}

	for _, f := range c.SymptomImages {
		parts = append(parts, filePart(FieldSymptomImages, f))
	}

	return &Submission{Parts: parts}, nil
}

func filePart(field string, f File) Part {
	return Part{
		Field:    field,
		Filename: f.Name,
		MIMEType: f.MIMEType,
		Data:     f.Data,
	}
}

// Fields lists the field name of every part in order.
func (s *Submission) Fields() []string {
	fields := make([]string, len(s.Parts))
	for i, p := range s.Parts {
		fields[i] = p.Field
	}

	return fields
}

// Encode writes the submission as multipart/form-data and returns the
// content type, boundary included.
func (s *Submission) Encode(w io.Writer) (string, error) {
	mw := multipart.NewWriter(w)

	for _, p := range s.Parts {
		if !p.IsFile() {
			if err := mw.WriteField(p.Field, p.Value); err != nil {
				return "", fmt.Errorf("failed to write field %s: %w", p.Field, err)
			}

			continue
		}

		pw, err := mw.CreatePart(filePartHeader(p))
		if err != nil {
			return "", fmt.Errorf("failed to create part %s: %w", p.Field, err)
		}

		if _, err := pw.Write(p.Data); err != nil {
			return "", fmt.Errorf("failed to write part %s: %w", p.Field, err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func filePartHeader(p Part) textproto.MIMEHeader {
	mimeType := p.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(p.Field), quoteEscaper.Replace(p.Filename)))
	h.Set("Content-Type", mimeType)

	return h
}
