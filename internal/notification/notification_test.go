package notification

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockNotification records calls to the notification function
type mockNotification struct {
	titles   []string
	messages []string
	err      error
}

func (m *mockNotification) notify(title, message string, icon any) error {
	m.titles = append(m.titles, title)
	m.messages = append(m.messages, message)
	return m.err
}

func useMock(t *testing.T, m *mockNotification) {
	t.Helper()
	prev := notify
	notify = m.notify
	t.Cleanup(func() { notify = prev })
}

func TestSend(t *testing.T) {
	tests := []struct {
		name        string
		mockErr     error
		expectError bool
	}{
		{"successful notification", nil, false},
		{"notification error", errors.New("notification failed"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockNotification{err: tt.mockErr}
			useMock(t, mock)

			err := Send("Title", "Message")
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			require.Len(t, mock.titles, 1)
			assert.Equal(t, "Title", mock.titles[0])
			assert.Equal(t, "Message", mock.messages[0])
		})
	}
}

func TestReplyReceived(t *testing.T) {
	mock := &mockNotification{}
	useMock(t, mock)

	require.NoError(t, ReplyReceived("Trip planning", "Pack\nlightly."))
	require.NoError(t, ReplyReceived("", "ok"))

	assert.Equal(t, []string{"parley · Trip planning", "parley"}, mock.titles)
	assert.Equal(t, []string{"Pack lightly.", "ok"}, mock.messages)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", Preview("  a\n\tb   c "))

	long := strings.Repeat("x", maxPreview+50)
	got := []rune(Preview(long))
	assert.Len(t, got, maxPreview)
	assert.Equal(t, '…', got[len(got)-1])
}
