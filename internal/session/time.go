package session

import "time"

// FormatMessageTime renders a message timestamp relative to now:
// "3:04 PM" within a day, "Yesterday, 3:04 PM" within two days, and
// "Jan 2, 3:04 PM" otherwise. A zero timestamp renders as "".
func FormatMessageTime(ts, now time.Time) string {
	if ts.IsZero() {
		return ""
	}
	ts = ts.In(now.Location())
	clock := ts.Format("3:04 PM")

	switch elapsed := now.Sub(ts); {
	case elapsed < 24*time.Hour:
		return clock
	case elapsed < 48*time.Hour:
		return "Yesterday, " + clock
	default:
		return ts.Format("Jan 2") + ", " + clock
	}
}
