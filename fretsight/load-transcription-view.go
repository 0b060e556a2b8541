package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var redTextStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FF0000"))

var greenTextStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#00FF00"))

var orangeTextStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FFA500"))

var loadingDetailsStyle = lipgloss.NewStyle().
	MarginLeft(4).Width(70)

func (m loadTranscriptionModel) View() string {
	sb := strings.Builder{}

	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(logoColor)).Render(getAsciiArt("logo.txt")))
	sb.WriteString("\n")
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")

	if m.choosingTrack() {
		sb.WriteString(trackListStyle.Render(m.menuList.View()))
		sb.WriteString("\n\n")
	}

	ld := strings.Builder{}
	switch {
	case m.payload == nil && m.choosingTrack():
		ld.WriteString(orangeTextStyle.Render("Choose a track and press enter"))
	case m.payload == nil:
		ld.WriteString(m.spinner.View() + " " + loadingString("transcription"))
	case m.payload.err != nil:
		ld.WriteString(loadFailureString("load transcription: " + m.payload.err.Error()))
	default:
		ld.WriteString(loadSuccessString("transcription (" + describeTranscription(m.payload.transcription) + ")"))
	}
	ld.WriteString("\n\n")

	if m.options.audioPath != "" {
		switch {
		case m.audio == nil:
			ld.WriteString(m.spinner.View() + " " + loadingString("backing track"))
		case m.audio.err != nil:
			ld.WriteString(loadFailureString("load backing track: " + m.audio.err.Error()))
		default:
			ld.WriteString(loadSuccessString("backing track"))
		}
		ld.WriteString("\n\n")
	}

	if m.failed() {
		ld.WriteString("Press q to quit")
	}
	sb.WriteString(loadingDetailsStyle.Render(ld.String()))

	return sb.String()
}

func loadFailureString(errStr string) string {
	return redTextStyle.Render("✕ Failed to " + errStr)
}

func loadSuccessString(msg string) string {
	return successString("Loaded " + msg)
}

func successString(msg string) string {
	return greenTextStyle.Render("✓ " + msg)
}

func loadingString(msg string) string {
	return orangeTextStyle.Render("Loading " + msg + "...")
}
