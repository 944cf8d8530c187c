package demo

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// castHeader is the first line of an asciicast v2 file.
type castHeader struct {
	Version   int   `json:"version"`
	Width     int   `json:"width"`
	Height    int   `json:"height"`
	Timestamp int64 `json:"timestamp,omitempty"`
}

// clearScreen homes the cursor and clears the screen before each frame.
const clearScreen = "\x1b[H\x1b[2J"

// GenerateASCIICast writes frames as an asciicast v2 recording. Each frame
// redraws the whole screen after its delay; annotations become markers.
func GenerateASCIICast(w io.Writer, frames []Frame, width, height int) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(castHeader{
		Version:   2,
		Width:     width,
		Height:    height,
		Timestamp: time.Now().Unix(),
	}); err != nil {
		return fmt.Errorf("failed to write cast header: %w", err)
	}

	var elapsed time.Duration
	for i, f := range frames {
		elapsed += f.Delay
		at := elapsed.Seconds()
		if f.Annotation != "" {
			if err := enc.Encode([]any{at, "m", f.Annotation}); err != nil {
				return fmt.Errorf("failed to write marker %d: %w", i, err)
			}
		}
		// Terminals in raw mode need explicit carriage returns.
		out := clearScreen + strings.ReplaceAll(f.Content, "\n", "\r\n")
		if err := enc.Encode([]any{at, "o", out}); err != nil {
			return fmt.Errorf("failed to write frame %d: %w", i, err)
		}
	}
	return nil
}
