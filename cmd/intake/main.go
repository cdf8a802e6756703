package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/alkime/intake/internal/audio"
	"github.com/alkime/intake/internal/backend"
	"github.com/alkime/intake/internal/intake"
	"github.com/alkime/intake/internal/keyring"
	"github.com/alkime/intake/internal/logger"
	"github.com/alkime/intake/internal/present"
	"github.com/alkime/intake/internal/tui"
	"github.com/alkime/intake/internal/workdir"
	tea "github.com/charmbracelet/bubbletea"
)

// CLI defines the intake command structure.
type CLI struct {
	LogLevel string `flag:"" env:"INTAKE_LOG_LEVEL" default:"info" help:"Log level: debug, info, warn, error"`

	// Default TUI command (runs when no subcommand given)
	TUI TUICmd `cmd:"" default:"withargs" help:"Start an interactive patient intake"`

	// Subcommands
	Submit  SubmitCmd  `cmd:"" help:"Send an intake without the terminal UI and print the form"`
	Devices DevicesCmd `cmd:"" help:"List available audio devices"`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration"`
}

// BackendFlags locate the analysis server.
type BackendFlags struct {
	BackendURL string        `flag:"" env:"INTAKE_BACKEND_URL" default:"http://localhost:8000" help:"Analysis server base URL"`
	Timeout    time.Duration `flag:"" default:"5m" help:"How long to wait for the intake form"`
}

func (b BackendFlags) client() *backend.Client {
	return backend.NewClient(b.BackendURL, backend.WithTimeout(b.Timeout))
}

// InputFlags pre-load input before the first screen.
type InputFlags struct {
	Text     string   `flag:"" optional:"" help:"Symptom description"`
	Document []string `flag:"" optional:"" type:"existingfile" help:"Medical document to include (repeatable)"`
	Image    []string `flag:"" optional:"" type:"existingfile" help:"Symptom photo to include (repeatable)"`
}

func (in InputFlags) collection() (intake.Collection, error) {
	c := intake.Collection{Text: in.Text}

	docs, err := intake.LoadFiles(in.Document...)
	if err != nil {
		return c, err
	}
	c.AddDocuments(docs...)

	imgs, err := intake.LoadFiles(in.Image...)
	if err != nil {
		return c, err
	}
	c.AddSymptomImages(imgs...)

	return c, nil
}

// TUICmd is the default command that runs the TUI.
type TUICmd struct {
	BackendFlags `embed:""`
	InputFlags   `embed:""`

	Name     string `flag:"" optional:"" help:"Session name (default: timestamp)"`
	PrintCmd string `flag:"" env:"INTAKE_PRINT_CMD" default:"lp" help:"Command that prints a file, given its path"`
	LogFile  string `flag:"" optional:"" help:"Log file (default: intake.log in the session directory)"`
	Style    string `flag:"" optional:"" help:"Markdown style: dark, light, notty (default: detect)"`
	MaxBytes int64  `flag:"" default:"52428800" help:"Max raw audio per recording (50MB)"`
}

// Run executes the TUI command.
func (c *TUICmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	root, err := workdir.Root()
	if err != nil {
		return err
	}

	dir, err := workdir.Open(root, workdir.SessionName(c.Name, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to prepare session directory: %w", err)
	}

	logPath := c.LogFile
	if logPath == "" {
		logPath = dir.File(workdir.LogFile)
	}

	_, closeLog, err := logger.SetupFileLogger(logPath, logger.ParseLevel(cli.LogLevel))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeLog(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}()

	initial, err := c.collection()
	if err != nil {
		return err
	}

	slog.Info("starting intake session", "dir", dir.Path, "backend", c.BackendURL)

	model := tui.New(tui.Config{
		Ctx:       ctx,
		Cancel:    cancel,
		Recorder:  audio.NewMicrophoneRecorder(audio.RecorderConfig{MaxBytes: c.MaxBytes}),
		Submitter: c.client(),
		Exporter:  present.NewExporter(dir, c.PrintCmd),
		Clips:     dir,
		Renderer:  present.NewGlamourRenderer(c.Style),
		Initial:   initial,
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to start TUI: %w", err)
	}

	fmt.Printf("session saved in %s. bye!\n", dir.Path)

	return nil
}

// DevicesCmd lists available audio devices.
type DevicesCmd struct{}

// Run executes the devices command.
func (dcmd *DevicesCmd) Run() error {
	slog.Info("Enumerating audio devices...")

	adev := audio.NewDevice(nil)
	devices, err := adev.EnumerateDevices(context.Background())
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	for _, dev := range devices {
		slog.Info("Audio Device",
			"name", dev.Name,
			"isDefault", dev.IsDefault,
			"formatCount", dev.FormatCount,
			"formats", dev.Formats,
		)
	}

	return nil
}

// ConfigCmd groups configuration-related subcommands.
type ConfigCmd struct {
	SetKey   SetKeyCmd   `cmd:"" help:"Store an analysis server API key in system keychain"`
	ListKeys ListKeysCmd `cmd:"" name:"list-keys" help:"Show which API keys are configured"`
}

// SetKeyCmd stores an API key in the system keychain.
type SetKeyCmd struct {
	Service string `arg:"" enum:"openai,anthropic" help:"Service name (openai or anthropic)"`
	Secret  string `arg:"" help:"API key value"`
}

// Run executes the set-key command.
func (c *SetKeyCmd) Run() error {
	if strings.TrimSpace(c.Secret) == "" {
		return errors.New("API key cannot be empty")
	}

	apiKey, err := keyring.APIKeyFromServiceName(c.Service)
	if err != nil {
		return fmt.Errorf("invalid service: %w", err)
	}

	if err := keyring.Set(apiKey, c.Secret); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	fmt.Printf("%s API key stored in keychain\n", c.Service)

	return nil
}

// ListKeysCmd shows which API keys are configured.
type ListKeysCmd struct{}

// Run executes the list-keys command.
//
//nolint:unparam // error return required by Kong interface
func (c *ListKeysCmd) Run() error {
	allSet := true

	for _, apiKey := range keyring.AllAPIKeys() {
		switch {
		case os.Getenv(apiKey.EnvVar()) != "":
			fmt.Printf("%s: set by %s\n", apiKey.DisplayName(), apiKey.EnvVar())
		case keyring.IsSet(apiKey):
			fmt.Printf("%s: configured\n", apiKey.DisplayName())
		default:
			fmt.Printf("%s: not set\n", apiKey.DisplayName())
			allSet = false
		}
	}

	if !allSet {
		fmt.Println("\nRun 'intake config set-key <service> <key>' to configure.")
	}

	return nil
}

func main() {
	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("intake"),
		kong.Description("Collect a patient's symptoms and get an intake form."),
	)

	// Text logs on stderr until a command takes over; stdout carries output.
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logger.ParseLevel(cli.LogLevel),
	})
	slog.SetDefault(slog.New(handler))

	err := ctx.Run(cli)
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
