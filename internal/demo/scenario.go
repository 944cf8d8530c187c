// Package demo drives parley through scripted scenarios against an
// in-process mock service and captures the rendered frames. It needs no
// real conversation service, so recordings are reproducible.
package demo

import (
	"strconv"
	"time"

	"github.com/zhubert/parley/internal/mockserver"
)

// StepType represents the type of action in a demo step.
type StepType int

const (
	// StepWait lets async work run for a duration, then captures a frame.
	StepWait StepType = iota
	// StepKey sends a single key press.
	StepKey
	// StepTypeText types a string character by character.
	StepTypeText
	// StepCapture captures the current frame.
	StepCapture
	// StepAnnotate adds a caption to the next captured frame.
	StepAnnotate
)

// Step represents a single action in a demo scenario.
type Step struct {
	Type        StepType
	Description string // Human-readable description of what this step does

	// For StepKey
	Key string

	// For StepTypeText
	Text string

	// For StepWait
	Duration time.Duration

	// For StepAnnotate
	Annotation string
}

// Scenario defines a complete demo scenario.
type Scenario struct {
	Name        string
	Description string
	Width       int // Terminal width (default 120)
	Height      int // Terminal height (default 40)
	Setup       *ScenarioSetup
	Steps       []Step
}

// ScenarioSetup defines what the mock service holds when the scenario starts.
type ScenarioSetup struct {
	// Seed is a YAML conversation seed as read by mockserver.LoadSeed.
	Seed []byte

	// Latency delays every reply so the waiting state can be captured.
	Latency time.Duration

	// Identity is the email put in the demo token and shown in the header.
	Identity string
}

// DefaultSetup returns the built-in seed with no added latency.
func DefaultSetup() *ScenarioSetup {
	return &ScenarioSetup{
		Seed:     mockserver.DemoSeed(),
		Identity: "demo@parley.dev",
	}
}

// Validate fills in defaults and checks that the scenario can run.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "Name", Message: "scenario name is required"}
	}
	if s.Width <= 0 {
		s.Width = 120
	}
	if s.Height <= 0 {
		s.Height = 40
	}
	if s.Setup == nil {
		s.Setup = DefaultSetup()
	}
	if s.Setup.Latency < 0 {
		return &ValidationError{Field: "Setup.Latency", Message: "latency cannot be negative"}
	}
	for i, step := range s.Steps {
		switch step.Type {
		case StepKey:
			if step.Key == "" {
				return &ValidationError{Field: "Steps", Message: "key step " + strconv.Itoa(i) + " has no key"}
			}
		case StepWait:
			if step.Duration < 0 {
				return &ValidationError{Field: "Steps", Message: "wait step " + strconv.Itoa(i) + " has a negative duration"}
			}
		}
	}
	return nil
}

// ValidationError represents a scenario validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + ": " + e.Message
}

// Wait lets background work run for d, then captures a frame.
func Wait(d time.Duration) Step { return Step{Type: StepWait, Duration: d} }

// Key presses a single key, named as keys.* or a printable character.
func Key(key string) Step { return Step{Type: StepKey, Key: key} }

// Type types text one character at a time.
func Type(text string) Step { return Step{Type: StepTypeText, Text: text} }

// Annotate captions the next captured frame.
func Annotate(text string) Step { return Step{Type: StepAnnotate, Annotation: text} }

// Capture captures a frame without waiting.
func Capture() Step { return Step{Type: StepCapture} }

// Describe returns s with a description, shown by `parley demo run`.
func (s Step) Describe(description string) Step {
	s.Description = description
	return s
}
