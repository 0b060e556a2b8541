package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

type sessionState int

const (
	loadTranscription sessionState = iota
	playTranscription
)

type mainModel struct {
	state     sessionState
	loadModel loadTranscriptionModel
	playModel playTranscriptionModel
}

func initialMainModel(loadModel loadTranscriptionModel) mainModel {
	return mainModel{
		state:     loadTranscription,
		loadModel: loadModel,
	}
}

func (m mainModel) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, m.loadModel.Init())
}

func (m mainModel) onQuit() mainModel {
	if m.state == playTranscription {
		m.playModel = m.playModel.teardown()
	}
	return m
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if isForceQuitMsg(msg) {
		log.Info("Force quit")
		return m.onQuit(), tea.Quit
	}

	switch m.state {
	case loadTranscription:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "q" && !m.loadModel.choosingTrack() {
			return m, tea.Quit
		}

		lm, cmd := m.loadModel.Update(msg)
		loadModel := lm.(loadTranscriptionModel)

		if loadModel.finishedSuccessfully() {
			playModel := createPlayModelFromLoadModel(loadModel)
			pmCmd := playModel.Init()
			m.state = playTranscription
			m.playModel = playModel
			return m, pmCmd
		}
		m.loadModel = loadModel
		return m, cmd
	case playTranscription:
		playModel, cmd := m.playModel.Update(msg)
		m.playModel = playModel.(playTranscriptionModel)
		return m, cmd
	}
	return m, nil
}

func (m mainModel) View() string {
	switch m.state {
	case loadTranscription:
		return m.loadModel.View()
	case playTranscription:
		return m.playModel.View()
	}
	return "No view"
}

func isForceQuitMsg(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return true
		}
	}
	return false
}

// runTUI owns the terminal, so logging goes to debug.log instead.
func runTUI(loadModel loadTranscriptionModel) error {
	f, err := tea.LogToFile("debug.log", "debug")
	if err != nil {
		return err
	}
	defer f.Close()
	log.SetOutput(f)

	p := tea.NewProgram(initialMainModel(loadModel))
	_, err = p.Run()
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
