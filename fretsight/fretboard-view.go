package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const fretCellWidth = 4

// one color per string, low E first
var stringColors = [numStrings]color{
	{0xe6, 0x82, 0x26},
	{0x31, 0x7f, 0xdb},
	{0xf6, 0xfa, 0x41},
	{0xb4, 0x24, 0x2d},
	{0x25, 0xb1, 0x2b},
	{0xee, 0x6f, 0xf8},
}

var fadedMarkerColor = color{0x30, 0x30, 0x30}

var handWindowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(logoColor))

var fretWireStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))

var statusStyle = lipgloss.NewStyle().
	Padding(0, 1, 0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color(pinkAccentColor))

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))

func writeStyledString(r *strings.Builder, style *lipgloss.Style, str string) {
	strToWrite := str
	if style != nil {
		strToWrite = style.Render(str)
	}
	r.WriteString(strToWrite)
}

// markerText is the fret number with a bend arrow and a vibrato squiggle.
func markerText(m noteMarker) string {
	text := strconv.Itoa(m.Fret)
	if m.Bend > 0 {
		text += "↑"
	} else if m.Bend < 0 {
		text += "↓"
	}
	if m.Vibrato {
		text += "~"
	}
	return text
}

// centerInCell pads text with fill on both sides to width runes.
func centerInCell(text string, fill string, width int) string {
	pad := width - lipgloss.Width(text)
	if pad <= 0 {
		return text
	}
	left := pad / 2
	return strings.Repeat(fill, left) + text + strings.Repeat(fill, pad-left)
}

func markerStyle(m noteMarker) lipgloss.Style {
	c := getColorForGradient(fadedMarkerColor, stringColors[m.String], m.Opacity)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#" + c.Hex()))
	if !m.Fading {
		style = style.Bold(true)
	}
	return style
}

func fretHeader(frame fretboardFrame, styled bool) string {
	r := strings.Builder{}
	r.WriteString("     ")
	for fret := 0; fret <= maxFret; fret++ {
		label := centerInCell(strconv.Itoa(fret), " ", fretCellWidth)
		if styled && fret >= frame.WindowLow && fret <= frame.WindowHigh {
			writeStyledString(&r, &handWindowStyle, label)
		} else {
			r.WriteString(label)
		}
		r.WriteRune(' ')
	}
	return r.String()
}

func (m playTranscriptionModel) createFretboardView(r *strings.Builder, styled bool) {
	frame := m.frame
	tn := m.session.tuning

	r.WriteString(fretHeader(frame, styled))
	r.WriteRune('\n')

	// high e on top like a tab
	for str := numStrings - 1; str >= 0; str-- {
		r.WriteString(fmt.Sprintf("%-4s", pitchName(tn[str])))

		for fret := 0; fret <= maxFret; fret++ {
			inWindow := fret >= frame.WindowLow && fret <= frame.WindowHigh

			wire := "|"
			if fret == 1 {
				wire = "‖" // nut
			}
			if styled {
				writeStyledString(r, &fretWireStyle, wire)
			} else {
				r.WriteString(wire)
			}

			if marker, ok := frame.markerAt(str, fret); ok {
				cell := centerInCell(markerText(marker), "-", fretCellWidth)
				if styled {
					style := markerStyle(marker)
					writeStyledString(r, &style, cell)
				} else {
					r.WriteString(cell)
				}
				continue
			}

			fill := "-"
			if inWindow {
				fill = "="
			}
			cell := strings.Repeat(fill, fretCellWidth)
			if styled && inWindow {
				writeStyledString(r, &handWindowStyle, cell)
			} else {
				r.WriteString(cell)
			}
		}
		r.WriteString("|\n")
	}
}

func (m playTranscriptionModel) statusLine() string {
	state := "▶ playing"
	if m.songIsFinished() {
		state = "■ finished"
	} else if !m.transport.playing() {
		state = "❚❚ paused"
	}

	fading := 0
	for _, marker := range m.frame.Markers {
		if marker.Fading {
			fading++
		}
	}

	return fmt.Sprintf("%s  %s / %s   hand: %s @ fret %d   notes: %d sounding, %d fading",
		state,
		formatPlaybackTime(m.transport.currentTime()), formatPlaybackTime(m.transport.duration()),
		m.frame.HandMode, m.frame.CenterFret,
		len(m.frame.Markers)-fading, fading)
}

func (m playTranscriptionModel) progressRatio() float64 {
	if m.transport.duration() <= 0 {
		return 0
	}
	return clampFloat(m.transport.currentTime()/m.transport.duration(), 0, 1)
}

const helpText = "space play/pause • ←/→ seek 5s • g jump • m auto/manual • ↑/↓ manual fret • +/- volume • x mute • 0 simple mode • q quit"

func (m playTranscriptionModel) SimpleView() string {
	r := strings.Builder{}
	m.createFretboardView(&r, false)
	r.WriteRune('\n')
	r.WriteString(m.statusLine())
	r.WriteString("\n\nPress 0 to exit simple mode")
	return r.String()
}

func (m playTranscriptionModel) ComplexView() string {
	r := strings.Builder{}
	m.createFretboardView(&r, true)

	prog := progress.New(progress.WithScaledGradient("#"+fadedMarkerColor.Hex(), logoColor))
	prog.Width = lipgloss.Width(fretHeader(m.frame, false))
	prog.ShowPercentage = false

	status := strings.Builder{}
	status.WriteString(titleStyle.Render(m.title) + "\n")
	status.WriteString(m.statusLine() + "\n")
	status.WriteString(prog.ViewAs(m.progressRatio()))

	footer := helpStyle.Render(helpText)
	if m.jumpTi != nil {
		footer = helpStyle.Render(m.jumpTi.View() + "  (enter to jump, esc to cancel)")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusStyle.Render(status.String()),
		r.String(),
		footer)
}

func (m playTranscriptionModel) View() string {
	if m.simpleMode {
		return m.SimpleView()
	}
	return m.ComplexView()
}

type color struct {
	r, g, b uint8
}

func (c color) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.r, c.g, c.b)
}

func getColorForGradient(a color, b color, percentage float64) color {
	percentage = clampFloat(percentage, 0, 1)

	newR := uint8(float64(a.r) + (float64(b.r)-float64(a.r))*percentage)
	newG := uint8(float64(a.g) + (float64(b.g)-float64(a.g))*percentage)
	newB := uint8(float64(a.b) + (float64(b.b)-float64(a.b))*percentage)

	return color{newR, newG, newB}
}
