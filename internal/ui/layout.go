package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-tracker/internal/model"
	"github.com/nhle/todo-tracker/internal/theme"
)

// Layout manages the terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the top header bar with a title on the left and
// the refresh status on the right.
func (l Layout) RenderHeader(title string, status string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	statusRendered := theme.HeaderStyle.Align(lipgloss.Right).Render(status)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		l.fill(theme.HeaderStyle, l.Width-lipgloss.Width(titleRendered)-lipgloss.Width(statusRendered)),
		statusRendered,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		rendered,
		l.fill(theme.StatusBarStyle, l.Width-lipgloss.Width(rendered)),
	)
}

// RenderNotifications stacks the active notifications as right-aligned
// toasts, oldest first. It returns "" when there is nothing to show.
func (l Layout) RenderNotifications(notifications []model.Notification) string {
	if len(notifications) == 0 {
		return ""
	}

	toasts := make([]string, len(notifications))
	for i, n := range notifications {
		toasts[i] = theme.NotificationStyle(n.Type).
			Render(theme.NotificationIcon(n.Type) + " " + n.Message)
	}

	return lipgloss.PlaceHorizontal(
		l.Width,
		lipgloss.Right,
		lipgloss.JoinVertical(lipgloss.Right, toasts...),
	)
}

// RenderWithFrame composes a full terminal view from the header, the
// content area, an optional toast stack and the status bar. Toasts take
// their height from the bottom of the content area.
func (l Layout) RenderWithFrame(header, content, toasts, statusBar string) string {
	if toasts != "" {
		keep := l.ContentHeight() - lipgloss.Height(toasts)
		lines := strings.Split(content, "\n")
		if keep < 0 {
			keep = 0
		}
		if len(lines) > keep {
			lines = lines[:keep]
		}
		content = strings.Join(lines, "\n")
		return lipgloss.JoinVertical(lipgloss.Left, header, content, toasts, statusBar)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// fill returns a run of width blank cells painted with style's background.
func (l Layout) fill(style lipgloss.Style, width int) string {
	if width < 0 {
		width = 0
	}
	return style.Render(
		lipgloss.NewStyle().
			Width(width).
			Background(style.GetBackground()).
			Render(""),
	)
}
