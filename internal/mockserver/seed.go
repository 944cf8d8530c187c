package mockserver

import (
	_ "embed"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zhubert/parley/internal/store"
)

//go:embed seed/demo.yaml
var demoSeed []byte

// seedFile is the YAML layout of a seed. Times are given as ages
// ("90m", "26h") relative to load time so a seed never goes stale.
type seedFile struct {
	Conversations []seedConversation `yaml:"conversations"`
}

type seedConversation struct {
	ID       string        `yaml:"id"`
	Title    string        `yaml:"title"`
	Age      time.Duration `yaml:"age"`
	Messages []seedMessage `yaml:"messages"`
}

type seedMessage struct {
	Sender string        `yaml:"sender"`
	Text   string        `yaml:"text"`
	Age    time.Duration `yaml:"age"`
}

// LoadSeed adds the conversations described by a YAML seed.
func (s *Server) LoadSeed(r io.Reader) error {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return fmt.Errorf("failed to parse seed: %w", err)
	}

	now := s.now()
	for i, sc := range f.Conversations {
		if sc.Title == "" {
			return fmt.Errorf("seed conversation %d has no title", i)
		}
		conv := store.Conversation{ID: sc.ID, Title: sc.Title, UpdatedAt: now.Add(-sc.Age)}
		for j, sm := range sc.Messages {
			sender := store.Sender(sm.Sender)
			if sender != store.SenderUser && sender != store.SenderBot {
				return fmt.Errorf("seed conversation %q message %d: unknown sender %q", sc.Title, j, sm.Sender)
			}
			conv.Messages = append(conv.Messages, store.Message{Text: sm.Text, Sender: sender, TimeStamp: now.Add(-sm.Age)})
		}
		s.Add(conv)
	}
	return nil
}

// DemoSeed returns the built-in seed used by `parley demo`.
func DemoSeed() []byte {
	return demoSeed
}
