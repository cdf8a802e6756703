// Package workdir lays out the client's on-disk files: recordings kept for
// playback and exported intake forms.
package workdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	// PreviewFile is the last finalized recording of a session.
	PreviewFile = "recording.mp3"
	// FormFile is the exported intake form.
	FormFile = "intake-form.md"
	// LogFile is where the client logs go.
	LogFile = "intake.log"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Root returns the base directory for all client files:
//
//	$HOME/Documents/Alkime/Intake
func Root() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, "Documents", "Alkime", "Intake"), nil
}

// Dir is one session's directory.
type Dir struct {
	Path string
}

// SessionName turns a user supplied name into a directory name. An empty
// name becomes a timestamp.
func SessionName(name string, now time.Time) string {
	name = strings.Trim(unsafeName.ReplaceAllString(strings.TrimSpace(name), "-"), "-.")
	if name == "" {
		return now.Format("2006-01-02-150405")
	}

	return name
}

// Open returns the session directory under root, creating it.
func Open(root, session string) (Dir, error) {
	if session == "" {
		return Dir{}, errors.New("session name is empty")
	}

	path := filepath.Join(root, "sessions", session)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Dir{}, fmt.Errorf("failed to create working directory %s: %w", path, err)
	}

	return Dir{Path: path}, nil
}

// File returns the full path of name inside the session.
func (d Dir) File(name string) string {
	return filepath.Join(d.Path, name)
}

// Write replaces name with data.
func (d Dir) Write(name string, data []byte) (string, error) {
	path := d.File(name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}

// Remove deletes name. A missing file is not an error.
func (d Dir) Remove(name string) error {
	if err := os.Remove(d.File(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}

	return nil
}
