package demo

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/zhubert/parley/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Reset()
	logger.Init(os.DevNull)
	code := m.Run()
	logger.Reset()
	os.Exit(code)
}

func TestExecutorDefaultConfig(t *testing.T) {
	cfg := DefaultExecutorConfig()

	if cfg.CaptureEveryStep {
		t.Error("CaptureEveryStep should be false by default")
	}
	if cfg.TypeDelay != 50*time.Millisecond {
		t.Errorf("TypeDelay = %v, want 50ms", cfg.TypeDelay)
	}
	if cfg.KeyDelay != 100*time.Millisecond {
		t.Errorf("KeyDelay = %v, want 100ms", cfg.KeyDelay)
	}
	if cfg.SettleTimeout != 150*time.Millisecond {
		t.Errorf("SettleTimeout = %v, want 150ms", cfg.SettleTimeout)
	}
}

func TestExecutorRun(t *testing.T) {
	scenario := &Scenario{
		Name:   "test",
		Width:  100,
		Height: 30,
		Steps: []Step{
			Wait(500 * time.Millisecond),
			Annotate("loaded"),
			Capture(),
		},
	}

	executor := NewExecutor(DefaultExecutorConfig())
	frames, err := executor.Run(context.Background(), scenario)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Initial frame, the wait and the capture
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	if frames[0].Delay != 500*time.Millisecond {
		t.Errorf("first frame delay = %v, want 500ms", frames[0].Delay)
	}
	if frames[2].Annotation != "loaded" {
		t.Errorf("annotation = %q, want it on the frame after Annotate", frames[2].Annotation)
	}

	view := ansi.Strip(frames[2].Content)
	for _, want := range []string{"Welcome to parley", "Go snippets"} {
		if !strings.Contains(view, want) {
			t.Errorf("frame missing %q:\n%s", want, view)
		}
	}
}

func TestExecutorSendsMessage(t *testing.T) {
	scenario := &Scenario{
		Name: "send",
		Steps: []Step{
			Wait(300 * time.Millisecond),
			Key("tab"),
			Type("tell me a joke"),
			Key("enter"),
			Wait(time.Second),
		},
	}

	frames, err := NewExecutor(DefaultExecutorConfig()).Run(context.Background(), scenario)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	last := ansi.Strip(frames[len(frames)-1].Content)
	if !strings.Contains(last, "You said") {
		t.Errorf("reply missing from final frame:\n%s", last)
	}
}

func TestExecutorCaptureEveryStep(t *testing.T) {
	scenario := &Scenario{
		Name: "typing",
		Steps: []Step{
			Key("tab"),
			Type("abc"),
		},
	}

	cfg := DefaultExecutorConfig()
	cfg.CaptureEveryStep = true
	frames, err := NewExecutor(cfg).Run(context.Background(), scenario)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Initial frame, the key and one per typed character
	if len(frames) != 5 {
		t.Errorf("got %d frames, want 5", len(frames))
	}
}

func TestExecutorRunInvalidScenario(t *testing.T) {
	_, err := NewExecutor(DefaultExecutorConfig()).Run(context.Background(), &Scenario{})
	if err == nil {
		t.Error("Run() should fail for a scenario without a name")
	}
}

func TestKeyPress(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"enter", "enter"},
		{"tab", "tab"},
		{"esc", "esc"},
		{"escape", "esc"},
		{"up", "up"},
		{"ctrl+n", "ctrl+n"},
		{"shift+enter", "shift+enter"},
		{"a", "a"},
		{"?", "?"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := keyPress(tt.key).String(); got != tt.want {
				t.Errorf("keyPress(%q).String() = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
