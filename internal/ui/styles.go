// Package ui renders benchmark results for the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

// This file centralizes the lipgloss styles used by the reports.

var (
	// Headers
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(lipgloss.Color("#7D56F4")). // Brand Color
			Bold(true).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	// Table cells
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light Gray
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // Cyan/Teal
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// Banners
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")). // Green
			Bold(true)
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Orange
)

// SuccessBanner styles a success line.
func SuccessBanner(msg string) string {
	return successStyle.Render("✔ " + msg)
}

// FailureBanner styles a failure line.
func FailureBanner(msg string) string {
	return errorStyle.Render("✘ " + msg)
}

// WarnBanner styles a warning line.
func WarnBanner(msg string) string {
	return warnStyle.Render("! " + msg)
}

// Header styles a section title.
func Header(title string) string {
	return headerStyle.Render(title)
}
