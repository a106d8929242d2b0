package domain

import (
	"fmt"
	"time"
)

// Window is a fixed look-back duration over which a pull delta is computed
type Window int

const (
	WindowDay Window = iota
	WindowWeek
	WindowMonth
)

// Windows lists every window a PullStats row reports, in display order
func Windows() []Window {
	return []Window{WindowDay, WindowWeek, WindowMonth}
}

// Duration returns the look-back length of the window
func (w Window) Duration() time.Duration {
	switch w {
	case WindowDay:
		return 24 * time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	case WindowMonth:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// ParseWindow parses a display label ("1d", "7d", "30d") into a Window
func ParseWindow(s string) (Window, error) {
	switch s {
	case "1d":
		return WindowDay, nil
	case "7d":
		return WindowWeek, nil
	case "30d":
		return WindowMonth, nil
	default:
		return 0, fmt.Errorf("invalid window %q: expected 1d, 7d or 30d", s)
	}
}

// String returns a display label
func (w Window) String() string {
	switch w {
	case WindowDay:
		return "1d"
	case WindowWeek:
		return "7d"
	case WindowMonth:
		return "30d"
	default:
		return "1d"
	}
}
