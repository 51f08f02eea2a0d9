package main

import (
	"fmt"
	"io"

	"github.com/bodgit/vbconv/cache"
	"github.com/bodgit/vbconv/progress"
	"github.com/charmbracelet/lipgloss"
)

var (
	mutedColor   = lipgloss.Color("#6B7280")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	primaryColor = lipgloss.Color("#7C3AED")
)

var (
	timeStyle     = lipgloss.NewStyle().Foreground(mutedColor)
	percentStyle  = lipgloss.NewStyle().Foreground(mutedColor).Width(5).Align(lipgloss.Right)
	infoStyle     = lipgloss.NewStyle()
	warningStyle  = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	doneStyle     = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	fileStyle     = lipgloss.NewStyle().Foreground(mutedColor)
	labelStyle    = lipgloss.NewStyle().Foreground(mutedColor).Width(12)
)

func categoryStyle(c progress.Category) lipgloss.Style {
	switch c {
	case progress.Warning:
		return warningStyle
	case progress.Error:
		return errorStyle
	case progress.Headline:
		return headlineStyle
	case progress.Done:
		return doneStyle
	default:
		return infoStyle
	}
}

func renderUpdate(w io.Writer, u progress.Update) {
	line := fmt.Sprintf("%s %s %s",
		timeStyle.Render(u.Entry.Time.Format("15:04:05")),
		percentStyle.Render(fmt.Sprintf("%d%%", u.Percent)),
		categoryStyle(u.Entry.Category).Render(u.Entry.Message),
	)
	if u.Entry.File != "" {
		line += " " + fileStyle.Render(u.Entry.File)
	}
	fmt.Fprintln(w, line)
}

func renderRecord(w io.Writer, r cache.Record) {
	status := doneStyle.Render("ok")
	detail := fmt.Sprintf("%d tiles, %s", r.Summary.Tiles, r.Summary.Compression)
	if r.Summary.Compression != "" && r.Summary.Compression != "NONE" {
		detail += fmt.Sprintf(" %.2f%%", r.Summary.Ratio)
	}
	if r.Summary.Frames > 1 {
		detail += fmt.Sprintf(", %d frames", r.Summary.Frames)
	}
	if r.Summary.Error != "" {
		status = errorStyle.Render("failed")
		detail = r.Summary.Error
	}

	fmt.Fprintf(w, "%s %s %s %s\n",
		timeStyle.Render(r.Time.Format("2006-01-02 15:04:05")),
		labelStyle.Render(r.Name),
		status,
		detail,
	)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render(""), fileStyle.Render(r.Config))
}
