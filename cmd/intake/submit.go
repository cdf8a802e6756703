package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alkime/intake/internal/backend"
	"github.com/alkime/intake/internal/intake"
	"github.com/alkime/intake/internal/present"
	"github.com/alkime/intake/pkg/channels"
)

// SubmitCmd runs one intake without the terminal UI.
type SubmitCmd struct {
	BackendFlags `embed:""`
	InputFlags   `embed:""`

	Audio  string `flag:"" optional:"" type:"existingfile" help:"Voice recording (mp3) to include"`
	Render bool   `flag:"" help:"Style the form for the terminal instead of printing raw markdown"`
	Style  string `flag:"" optional:"" help:"Markdown style used with --render"`
}

type submitOutcome struct {
	resp *backend.Response
	err  error
}

// Run executes the submit command. The machine is only touched from this
// goroutine; the upload reports back over channels.
func (c *SubmitCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := intake.NewMachine()

	in, err := c.collection()
	if err != nil {
		return err
	}

	if err := m.SetText(in.Text); err != nil {
		return err
	}

	if err := m.AddDocuments(in.Documents...); err != nil {
		return err
	}

	if err := m.AddSymptomImages(in.SymptomImages...); err != nil {
		return err
	}

	if c.Audio != "" {
		data, err := os.ReadFile(c.Audio)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", c.Audio, err)
		}

		clip := intake.AudioClip{Data: data, MIMEType: intake.DetectMIME(filepath.Base(c.Audio))}
		if err := m.SetAudio(clip); err != nil {
			return err
		}
	}

	sub, err := m.Submit()
	if err != nil {
		return errors.New(m.Error())
	}

	progress(m)

	accepted := make(chan struct{}, 1)
	done := make(chan submitOutcome, 1)

	go func() {
		resp, err := c.client().Submit(ctx, sub, func() {
			_ = channels.SendContext(ctx, accepted, struct{}{})
		})
		done <- submitOutcome{resp: resp, err: err}
	}()

	for {
		select {
		case <-accepted:
			if err := m.Accepted(); err == nil {
				progress(m)
			}

		case out := <-done:
			if out.err != nil {
				_ = m.Fail(out.err)
				return fmt.Errorf("%s: %w", m.Error(), out.err)
			}

			result := out.resp.Result()
			if err := m.Succeed(result); err != nil {
				return err
			}

			return c.print(result.Form)
		}
	}
}

func (c *SubmitCmd) print(form string) error {
	if !c.Render {
		fmt.Println(form)
		return nil
	}

	out, err := present.NewGlamourRenderer(c.Style).Render(form, 0)
	if err != nil {
		return err
	}

	fmt.Print(out)

	return nil
}

func progress(m *intake.Machine) {
	if p, ok := m.Phase().(intake.Processing); ok {
		fmt.Fprintln(os.Stderr, p.Status)
	}
}
