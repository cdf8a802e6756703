package intake_test

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/alkime/intake/internal/intake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBuild_EmptyCollection(t *testing.T) {
	t.Parallel()

	sub, err := intake.Build(intake.Collection{})

	require.ErrorIs(t, err, intake.ErrEmptyInput)
	assert.Nil(t, sub)
}

func TestBuild_PartOrder(t *testing.T) {
	t.Parallel()

	c := intake.Collection{
		Text:  "chest pain for 3 days",
		Audio: &intake.AudioClip{Data: []byte("mp3"), MIMEType: "audio/mpeg"},
	}
	c.AddDocuments(doc("lab.pdf"), doc("rx.pdf"))
	c.AddSymptomImages(intake.File{Name: "rash.jpg", MIMEType: "image/jpeg", Data: []byte("jpg")})

	sub, err := intake.Build(c)
	require.NoError(t, err)

	assert.Equal(t, []string{
		intake.FieldAudio,
		intake.FieldText,
		intake.FieldDocuments,
		intake.FieldDocuments,
		intake.FieldSymptomImages,
	}, sub.Fields())

	assert.Equal(t, intake.AudioFilename, sub.Parts[0].Filename)
	assert.Equal(t, "audio/mpeg", sub.Parts[0].MIMEType)
	assert.Equal(t, "chest pain for 3 days", sub.Parts[1].Value)
	assert.False(t, sub.Parts[1].IsFile())
	assert.Equal(t, "lab.pdf", sub.Parts[2].Filename)
	assert.Equal(t, "rx.pdf", sub.Parts[3].Filename)
	assert.Equal(t, "rash.jpg", sub.Parts[4].Filename)
}

func TestBuild_EmptyClipStillCounts(t *testing.T) {
	t.Parallel()

	sub, err := intake.Build(intake.Collection{Audio: &intake.AudioClip{MIMEType: "audio/mpeg"}})
	require.NoError(t, err)
	assert.Equal(t, []string{intake.FieldAudio}, sub.Fields())
}

func TestSubmission_Encode(t *testing.T) {
	t.Parallel()

	c := intake.Collection{
		Text:  "allergic to penicillin",
		Audio: &intake.AudioClip{Data: []byte("mp3-bytes"), MIMEType: "audio/mpeg"},
	}
	c.AddDocuments(intake.File{Name: `odd "name".pdf`, MIMEType: "application/pdf", Data: []byte("pdf")})
	c.AddSymptomImages(intake.File{Name: "wound.png", Data: []byte("png")})

	sub, err := intake.Build(c)
	require.NoError(t, err)

	var body bytes.Buffer
	contentType, err := sub.Encode(&body)
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(&body, params["boundary"])

	type seen struct {
		field, filename, contentType, body string
	}

	var got []seen

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)

		data, err := io.ReadAll(part)
		require.NoError(t, err)

		got = append(got, seen{
			field:       part.FormName(),
			filename:    part.FileName(),
			contentType: part.Header.Get("Content-Type"),
			body:        string(data),
		})
	}

	assert.Equal(t, []seen{
		{intake.FieldAudio, intake.AudioFilename, "audio/mpeg", "mp3-bytes"},
		{intake.FieldText, "", "", "allergic to penicillin"},
		{intake.FieldDocuments, `odd "name".pdf`, "application/pdf", "pdf"},
		{intake.FieldSymptomImages, "wound.png", "application/octet-stream", "png"},
	}, got)
}

// Any non-empty collection builds, and the parts are exactly the present
// sources in collection order.
func TestBuild_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var c intake.Collection

		c.Text = rapid.SampledFrom([]string{"", "fever", "dizzy since monday"}).Draw(t, "text")
		if rapid.Bool().Draw(t, "has_audio") {
			c.Audio = &intake.AudioClip{
				Data:     rapid.SliceOfN(rapid.Byte(), 0, 16).Draw(t, "audio"),
				MIMEType: "audio/mpeg",
			}
		}

		docs := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,5}\.pdf`), 0, 4).Draw(t, "docs")
		for _, n := range docs {
			c.AddDocuments(doc(n))
		}

		imgs := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,5}\.jpg`), 0, 4).Draw(t, "imgs")
		for _, n := range imgs {
			c.AddSymptomImages(doc(n))
		}

		sub, err := intake.Build(c)

		if c.IsEmpty() {
			if !errors.Is(err, intake.ErrEmptyInput) {
				t.Fatalf("expected ErrEmptyInput, got %v", err)
			}

			return
		}

		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		var want []string
		if c.Audio != nil {
			want = append(want, intake.AudioFilename)
		}
		if c.Text != "" {
			want = append(want, "text:"+c.Text)
		}
		want = append(want, docs...)
		want = append(want, imgs...)

		if len(sub.Parts) != len(want) {
			t.Fatalf("got %d parts, want %d", len(sub.Parts), len(want))
		}

		for i, p := range sub.Parts {
			got := p.Filename
			if !p.IsFile() {
				got = "text:" + p.Value
			}

			if got != want[i] {
				t.Fatalf("part %d = %q, want %q", i, got, want[i])
			}
		}
	})
}
