// Package scenarios contains built-in demo scenarios for parley.
package scenarios

import (
	"time"

	"github.com/zhubert/parley/internal/demo"
	"github.com/zhubert/parley/internal/keys"
	"github.com/zhubert/parley/internal/mockserver"
)

// Overview walks through the main workflow:
// - Browsing the conversation list loaded from the service
// - Opening an older conversation and asking a question
// - Watching the reply arrive and render as markdown
// - Opening the help modal
var Overview = &demo.Scenario{
	Name:        "overview",
	Description: "Browse conversations, ask a question, open help",
	Width:       120,
	Height:      40,
	Setup: &demo.ScenarioSetup{
		Seed:     mockserver.DemoSeed(),
		Latency:  800 * time.Millisecond,
		Identity: "demo@parley.dev",
	},
	Steps: []demo.Step{
		demo.Annotate("The most recent conversation opens on startup"),
		demo.Wait(1500 * time.Millisecond),

		demo.Key(keys.Down).Describe("Move to the next conversation"),
		demo.Wait(500 * time.Millisecond),
		demo.Key(keys.Enter).Describe("Open it"),
		demo.Wait(1 * time.Second),

		demo.Type("Give me a list of steps").Describe("Ask a question"),
		demo.Wait(500 * time.Millisecond),
		demo.Annotate("Waiting for the reply"),
		demo.Key(keys.Enter),
		demo.Capture(),
		demo.Wait(1500 * time.Millisecond),

		demo.Key(keys.Tab).Describe("Back to the sidebar"),
		demo.Annotate("Every shortcut is listed in help"),
		demo.Key("?"),
		demo.Wait(2 * time.Second),
		demo.Key(keys.Escape),
		demo.Wait(500 * time.Millisecond),
	},
}

// NewChat starts a conversation from scratch and sends a greeting.
var NewChat = &demo.Scenario{
	Name:        "new-chat",
	Description: "Start a new conversation and send a message",
	Width:       100,
	Height:      30,
	Steps: []demo.Step{
		demo.Wait(1 * time.Second),
		demo.Key(keys.CtrlN).Describe("New conversation"),
		demo.Wait(500 * time.Millisecond),
		demo.Type("hello there").Describe("Greet the assistant"),
		demo.Key(keys.Enter),
		demo.Wait(1 * time.Second),
	},
}

// All returns all built-in scenarios.
func All() []*demo.Scenario {
	return []*demo.Scenario{
		Overview,
		NewChat,
	}
}

// Get returns a scenario by name, or nil if not found.
func Get(name string) *demo.Scenario {
	for _, s := range All() {
		if s.Name == name {
			return s
		}
	}
	return nil
}
