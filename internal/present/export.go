package present

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/alkime/intake/internal/workdir"
)

// DefaultPrintCommand hands the file to the system print spooler.
const DefaultPrintCommand = "lp"

// Exporter saves the form into the session directory and prepares the
// print command for it.
type Exporter struct {
	dir      workdir.Dir
	printCmd []string
}

// NewExporter splits printCmd on whitespace, so "lp -d office" works. An
// empty printCmd only saves.
func NewExporter(dir workdir.Dir, printCmd string) *Exporter {
	return &Exporter{dir: dir, printCmd: strings.Fields(printCmd)}
}

// Save writes the markdown and returns its path.
func (e *Exporter) Save(markdown string) (string, error) {
	return e.dir.Write(workdir.FormFile, []byte(markdown))
}

// PrintCommand saves the markdown and returns the command that prints it.
// The caller runs the command.
func (e *Exporter) PrintCommand(ctx context.Context, markdown string) (*exec.Cmd, string, error) {
	path, err := e.Save(markdown)
	if err != nil {
		return nil, "", err
	}

	if len(e.printCmd) == 0 {
		return nil, path, errors.New("no print command configured")
	}

	args := append(e.printCmd[1:len(e.printCmd):len(e.printCmd)], path)

	return exec.CommandContext(ctx, e.printCmd[0], args...), path, nil
}
