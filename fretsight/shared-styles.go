package main

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

const (
	logoColor         = "#07edc3"
	selectedItemColor = logoColor
	yellowAccentColor = "#f0f007"
	pinkAccentColor   = "#ee6ff8"
)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(yellowAccentColor)).
	Bold(true)

var listTitleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(yellowAccentColor)).
	Bold(true).
	BorderForeground(lipgloss.Color(pinkAccentColor)).
	BorderStyle(lipgloss.Border{Left: "♪", Right: "♪"}).
	BorderBottom(false).BorderTop(false).BorderLeft(true).BorderRight(true).
	Padding(0, 1, 0, 1)

var trackListStyle = lipgloss.NewStyle().
	Padding(1, 1, 1, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color(yellowAccentColor)).
	Width(60)

func styleList(list *list.Model) {
	list.Styles.Title = listTitleStyle
}

func createListDd() list.DefaultDelegate {
	dd := list.NewDefaultDelegate()

	dd.Styles.SelectedTitle = dd.Styles.SelectedTitle.Foreground(lipgloss.Color(selectedItemColor)).
		BorderStyle(lipgloss.Border{Left: "♪"}).
		BorderForeground(lipgloss.Color(selectedItemColor))
	dd.Styles.SelectedDesc = dd.Styles.SelectedDesc.Foreground(lipgloss.Color(selectedItemColor)).
		BorderStyle(lipgloss.Border{Left: "♫"}).
		BorderForeground(lipgloss.Color(selectedItemColor))

	return dd
}
