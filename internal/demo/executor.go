package demo

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/app"
	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/keys"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/mockserver"
)

// Frame represents a captured frame from the demo.
type Frame struct {
	Content    string        // ANSI-encoded terminal content
	Delay      time.Duration // Delay before this frame
	Annotation string        // Optional annotation/caption
	StepIndex  int           // Step that produced this frame, -1 for the initial one
}

// ExecutorConfig configures the demo executor.
type ExecutorConfig struct {
	// CaptureEveryStep captures a frame after every key and typed character
	CaptureEveryStep bool

	// TypeDelay is the delay between characters when typing (default: 50ms)
	TypeDelay time.Duration

	// KeyDelay is the delay after key presses (default: 100ms)
	KeyDelay time.Duration

	// SettleTimeout is how long the model must stay quiet after an input
	// before the next step runs (default: 150ms)
	SettleTimeout time.Duration
}

// DefaultExecutorConfig returns the default executor configuration.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		CaptureEveryStep: false, // Don't capture every step by default for cleaner demos
		TypeDelay:        50 * time.Millisecond,
		KeyDelay:         100 * time.Millisecond,
		SettleTimeout:    150 * time.Millisecond,
	}
}

// demoSecret signs the token the in-process server accepts.
var demoSecret = []byte("parley-demo")

// Executor runs demo scenarios and captures frames.
type Executor struct {
	config ExecutorConfig
	model  *app.Model
	server *httptest.Server
	frames []Frame

	// msgs carries the results of commands run in the background. Ticks
	// land here long after the input that started them.
	msgs chan tea.Msg
	done chan struct{}

	currentAnnotation string
}

// NewExecutor creates a new demo executor.
func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.SettleTimeout <= 0 {
		cfg.SettleTimeout = DefaultExecutorConfig().SettleTimeout
	}
	return &Executor{
		config: cfg,
		frames: []Frame{},
	}
}

// Cleanup stops the mock service and abandons background commands.
func (e *Executor) Cleanup() {
	if e.done != nil {
		close(e.done)
		e.done = nil
	}
	if e.server != nil {
		e.server.Close()
		e.server = nil
	}
}

// Run executes a scenario and returns the captured frames.
func (e *Executor) Run(ctx context.Context, scenario *Scenario) ([]Frame, error) {
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := e.setup(ctx, scenario); err != nil {
		return nil, fmt.Errorf("setup failed: %w", err)
	}
	defer e.Cleanup()

	e.captureFrame(-1, 500*time.Millisecond)

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.executeStep(i, step)
	}

	return e.frames, nil
}

// setup starts the mock service and a model connected to it.
func (e *Executor) setup(ctx context.Context, scenario *Scenario) error {
	srv := mockserver.New(
		mockserver.WithJWTSecret(demoSecret),
		mockserver.WithLatency(scenario.Setup.Latency),
	)
	seed := scenario.Setup.Seed
	if seed == nil {
		seed = mockserver.DemoSeed()
	}
	if err := srv.LoadSeed(bytes.NewReader(seed)); err != nil {
		return err
	}

	identity := scenario.Setup.Identity
	token, err := mockserver.IssueToken(demoSecret, "demo", identity, time.Hour)
	if err != nil {
		return fmt.Errorf("failed to issue demo token: %w", err)
	}

	e.server = httptest.NewServer(srv.Handler())
	baseURL := e.server.URL + "/api"
	client, err := api.New(baseURL, token)
	if err != nil {
		e.server.Close()
		return err
	}

	cfg := config.NewEphemeral()
	cfg.MarkWelcomeShown() // Skip welcome modal in demos
	if err := cfg.OverrideAPIURL(baseURL); err != nil {
		e.server.Close()
		return err
	}

	e.msgs = make(chan tea.Msg, 64)
	e.done = make(chan struct{})
	e.model = app.New(cfg, client,
		app.WithContext(ctx),
		app.WithVersion("demo"),
		app.WithIdentity(identity),
	)
	e.update(tea.WindowSizeMsg{Width: scenario.Width, Height: scenario.Height})
	e.start(e.model.Init())
	e.settle(e.config.SettleTimeout)

	logger.WithComponent("demo").Info("scenario ready", "scenario", scenario.Name, "server", e.server.URL)
	return nil
}

// executeStep executes a single demo step.
func (e *Executor) executeStep(index int, step Step) {
	if step.Description != "" {
		logger.WithComponent("demo").Debug("step", "index", index, "description", step.Description)
	}
	switch step.Type {
	case StepWait:
		e.settleFor(step.Duration)
		e.captureFrame(index, step.Duration)

	case StepKey:
		e.sendKey(step.Key)
		e.settle(e.config.SettleTimeout)
		if e.config.CaptureEveryStep {
			e.captureFrame(index, e.config.KeyDelay)
		}

	case StepTypeText:
		for _, ch := range step.Text {
			e.sendKey(string(ch))
			if e.config.CaptureEveryStep {
				e.captureFrame(index, e.config.TypeDelay)
			}
		}
		e.settle(e.config.SettleTimeout)

	case StepAnnotate:
		e.currentAnnotation = step.Annotation
		// Don't capture, annotation applies to next frame

	case StepCapture:
		e.drainReady()
		e.captureFrame(index, 0)
	}
}

// captureFrame captures the current view as a frame.
func (e *Executor) captureFrame(stepIndex int, delay time.Duration) {
	frame := Frame{
		Content:    e.model.RenderToString(),
		Delay:      delay,
		Annotation: e.currentAnnotation,
		StepIndex:  stepIndex,
	}
	e.frames = append(e.frames, frame)

	// Clear annotation after use
	e.currentAnnotation = ""
}

// sendKey sends a key press to the model.
func (e *Executor) sendKey(key string) {
	e.update(keyPress(key))
}

// update feeds msg to the model and starts whatever command it returns.
func (e *Executor) update(msg tea.Msg) {
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, cmd := range batch {
			e.start(cmd)
		}
		return
	}
	_, cmd := e.model.Update(msg)
	e.start(cmd)
}

// start runs cmd in the background; its message arrives on e.msgs.
func (e *Executor) start(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msgs, done := e.msgs, e.done
	go func() {
		msg := cmd()
		if msg == nil {
			return
		}
		select {
		case msgs <- msg:
		case <-done:
		}
	}()
}

// settle processes messages until none arrives for quiet.
func (e *Executor) settle(quiet time.Duration) {
	timer := time.NewTimer(quiet)
	defer timer.Stop()
	for {
		select {
		case msg := <-e.msgs:
			e.update(msg)
			timer.Reset(quiet)
		case <-timer.C:
			return
		}
	}
}

// settleFor processes messages for exactly d.
func (e *Executor) settleFor(d time.Duration) {
	deadline := time.NewTimer(d)
	defer deadline.Stop()
	for {
		select {
		case msg := <-e.msgs:
			e.update(msg)
		case <-deadline.C:
			return
		}
	}
}

// drainReady processes the messages that have already arrived.
func (e *Executor) drainReady() {
	for {
		select {
		case msg := <-e.msgs:
			e.update(msg)
		default:
			return
		}
	}
}

// keyPress converts a key string to a tea.KeyPressMsg.
func keyPress(key string) tea.KeyPressMsg {
	switch key {
	case keys.Enter:
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case keys.ShiftEnter:
		return tea.KeyPressMsg{Code: tea.KeyEnter, Mod: tea.ModShift}
	case keys.Tab:
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case keys.Escape, "escape":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case keys.Up:
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case keys.Down:
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case keys.PgUp:
		return tea.KeyPressMsg{Code: tea.KeyPgUp}
	case keys.PgDown:
		return tea.KeyPressMsg{Code: tea.KeyPgDown}
	case "space", " ":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	case keys.CtrlL:
		return tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl}
	case keys.CtrlN:
		return tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl}
	case keys.CtrlO:
		return tea.KeyPressMsg{Code: 'o', Mod: tea.ModCtrl}
	case keys.CtrlV:
		return tea.KeyPressMsg{Code: 'v', Mod: tea.ModCtrl}
	case keys.CtrlX:
		return tea.KeyPressMsg{Code: 'x', Mod: tea.ModCtrl}
	case keys.CtrlY:
		return tea.KeyPressMsg{Code: 'y', Mod: tea.ModCtrl}
	default:
		r := []rune(key)
		if len(r) == 1 {
			return tea.KeyPressMsg{Code: r[0], Text: key}
		}
		return tea.KeyPressMsg{Text: key}
	}
}
