package intake

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FallbackMIMEType is assumed for unknown extensions; most uploads are
// phone photos.
const FallbackMIMEType = "image/jpeg"

var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".mp3":  "audio/mpeg",
}

// DetectMIME picks a content type from the file extension.
func DetectMIME(name string) string {
	if mt, ok := mimeByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}

	return FallbackMIMEType
}

// LoadFile reads path into a File named after its base name.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	name := filepath.Base(path)

	return File{Name: name, MIMEType: DetectMIME(name), Data: data}, nil
}

// LoadFiles reads every path, stopping at the first failure.
func LoadFiles(paths ...string) ([]File, error) {
	files := make([]File, 0, len(paths))

	for _, p := range paths {
		f, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	return files, nil
}
