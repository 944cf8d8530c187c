package modals

import (
	"os"
	"testing"

	"charm.land/lipgloss/v2"

	"github.com/zhubert/parley/internal/logger"
)

func TestMain(m *testing.M) {
	// Keep test runs out of the shared debug log
	logger.Reset()
	logger.Init(os.DevNull)

	plain := lipgloss.NewStyle()
	c := lipgloss.Color("#FFFFFF")
	SetStyles(Palette{
		Title: plain, Help: plain, Item: plain, Selected: plain, Error: plain,
		Primary: c, Secondary: c, Text: c, Muted: c, Inverse: c, Warning: c,
		InputWidth: 50, InputCharLimit: 256, Width: 60,
	})

	code := m.Run()

	logger.Reset()
	os.Exit(code)
}
