// Package intake holds the client intake workflow: the pending input
// collection, submission assembly and the phase state machine.
package intake

import "slices"

// AudioClip is one finalized voice recording. It is never mutated; a new
// recording replaces it wholesale.
type AudioClip struct {
	Data     []byte
	MIMEType string
}

// File is a document or symptom photo selected by the patient.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Collection is the accumulated input waiting to be submitted.
//
// File sets keep insertion order and may contain several files with the same
// name, so removal is by position rather than by name.
type Collection struct {
	Text          string
	Audio         *AudioClip
	Documents     []File
	SymptomImages []File
}

// SetText replaces the free-text description. An empty string clears it.
func (c *Collection) SetText(text string) {
	c.Text = text
}

// SetAudio replaces the stored clip.
func (c *Collection) SetAudio(clip AudioClip) {
	c.Audio = &clip
}

// ClearAudio drops the stored clip.
func (c *Collection) ClearAudio() {
	c.Audio = nil
}

// AddDocuments appends documents after the existing ones.
func (c *Collection) AddDocuments(files ...File) {
	c.Documents = append(slices.Clip(c.Documents), files...)
}

// AddSymptomImages appends symptom photos after the existing ones.
func (c *Collection) AddSymptomImages(files ...File) {
	c.SymptomImages = append(slices.Clip(c.SymptomImages), files...)
}

// RemoveDocument removes the document at index i. A stale or out of range
// index is ignored and reported as false.
func (c *Collection) RemoveDocument(i int) bool {
	var ok bool
	c.Documents, ok = removeAt(c.Documents, i)

	return ok
}

// RemoveSymptomImage removes the symptom photo at index i. A stale or out of
// range index is ignored and reported as false.
func (c *Collection) RemoveSymptomImage(i int) bool {
	var ok bool
	c.SymptomImages, ok = removeAt(c.SymptomImages, i)

	return ok
}

// Clear resets every field to the empty collection.
func (c *Collection) Clear() {
	*c = Collection{}
}

// IsEmpty reports whether no input source is present.
func (c Collection) IsEmpty() bool {
	return c.Text == "" && c.Audio == nil && len(c.Documents) == 0 && len(c.SymptomImages) == 0
}

// Clone returns a copy whose slices do not share backing arrays with c.
// File and clip payloads are shared since they are never written after
// being added.
func (c Collection) Clone() Collection {
	out := Collection{
		Text:          c.Text,
		Documents:     slices.Clone(c.Documents),
		SymptomImages: slices.Clone(c.SymptomImages),
	}

	if c.Audio != nil {
		clip := *c.Audio
		out.Audio = &clip
	}

	return out
}

// removeAt never writes into the array it was given, so earlier clones and
// in-flight submissions keep seeing the files they captured.
func removeAt(files []File, i int) ([]File, bool) {
	if i < 0 || i >= len(files) {
		return files, false
	}

	out := make([]File, 0, len(files)-1)
	out = append(out, files[:i]...)
	out = append(out, files[i+1:]...)

	if len(out) == 0 {
		return nil, true
	}

	return out, true
}
