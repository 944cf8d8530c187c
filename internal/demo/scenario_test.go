package demo

import (
	"testing"
	"time"
)

func TestScenarioValidate(t *testing.T) {
	tests := []struct {
		name     string
		scenario Scenario
		wantErr  bool
	}{
		{
			name:     "valid scenario",
			scenario: Scenario{Name: "test", Width: 80, Height: 24},
		},
		{
			name:     "missing name",
			scenario: Scenario{Width: 80, Height: 24},
			wantErr:  true,
		},
		{
			name:     "defaults applied",
			scenario: Scenario{Name: "test"},
		},
		{
			name:     "key step without key",
			scenario: Scenario{Name: "test", Steps: []Step{{Type: StepKey}}},
			wantErr:  true,
		},
		{
			name:     "negative wait",
			scenario: Scenario{Name: "test", Steps: []Step{Wait(-time.Second)}},
			wantErr:  true,
		},
		{
			name:     "negative latency",
			scenario: Scenario{Name: "test", Setup: &ScenarioSetup{Latency: -time.Second}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scenario.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScenarioValidateDefaults(t *testing.T) {
	s := &Scenario{Name: "test"}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if s.Width != 120 || s.Height != 40 {
		t.Errorf("size = %dx%d, want 120x40", s.Width, s.Height)
	}
	if s.Setup == nil || len(s.Setup.Seed) == 0 {
		t.Error("default setup should carry the built-in seed")
	}
}

func TestStepBuilders(t *testing.T) {
	if s := Wait(time.Second); s.Type != StepWait || s.Duration != time.Second {
		t.Errorf("Wait() = %+v", s)
	}
	if s := Key("enter"); s.Type != StepKey || s.Key != "enter" {
		t.Errorf("Key() = %+v", s)
	}
	if s := Key("tab").Describe("switch"); s.Key != "tab" || s.Description != "switch" {
		t.Errorf("Key().Describe() = %+v", s)
	}
	if s := Type("hi"); s.Type != StepTypeText || s.Text != "hi" {
		t.Errorf("Type() = %+v", s)
	}
	if s := Type("hi").Describe("greet"); s.Text != "hi" || s.Description != "greet" {
		t.Errorf("Type().Describe() = %+v", s)
	}
	if s := Annotate("note"); s.Type != StepAnnotate || s.Annotation != "note" {
		t.Errorf("Annotate() = %+v", s)
	}
	if s := Capture(); s.Type != StepCapture {
		t.Errorf("Capture() = %+v", s)
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "Name", Message: "scenario name is required"}
	want := "validation error: Name: scenario name is required"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
