package main

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/faiface/beep"
)

// playOptions are the play command's flags.
type playOptions struct {
	payloadPath string
	audioPath   string
	track       int // MIDI track, -1 to ask when there are several
	plan        bool
	manualFret  *int
}

type loadTranscriptionModel struct {
	title    string
	options  playOptions
	settings settings
	spinner  spinner.Model
	speaker  *audioSpeaker

	// set from the embedded demo instead of a file
	preloaded *transcription

	payload  *loadedPayloadMsg
	audio    *loadedAudioMsg
	tracks   *loadedTracksMsg
	menuList *list.Model
}

type loadedPayloadMsg struct {
	transcription *transcription
	err           error
}

type loadedAudioMsg struct {
	track *playableSound[beep.StreamSeeker]
	err   error
}

type loadedTracksMsg struct {
	tracks []midiTrackSummary
	err    error
}

func initialLoadModel(title string, options playOptions, stngs settings, spkr *audioSpeaker) loadTranscriptionModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return loadTranscriptionModel{
		title:    title,
		options:  options,
		settings: stngs,
		spinner:  s,
		speaker:  spkr,
	}
}

func (m loadTranscriptionModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}

	switch {
	case m.preloaded != nil:
		cmds = append(cmds, preparedPayloadCmd(m.preloaded, m.options.plan, m.settings.tuning))
	case isMidiFile(m.options.payloadPath) && m.options.track < 0:
		cmds = append(cmds, listMidiTracksCmd(m.options.payloadPath))
	default:
		cmds = append(cmds, loadPayloadCmd(m.options, m.settings.tuning))
	}

	if m.options.audioPath != "" {
		cmds = append(cmds, loadAudioCmd(m.options.audioPath, m.speaker))
	}
	return tea.Batch(cmds...)
}

// prepareTranscription loads a payload or MIDI file and optionally plans
// fingerings and hand positions for it.
func prepareTranscription(options playOptions, tn tuning) (*transcription, error) {
	var tr *transcription
	var err error
	if isMidiFile(options.payloadPath) && options.track >= 0 {
		tr, err = importMidiFile(options.payloadPath, options.track)
	} else {
		tr, err = loadTranscriptionFile(options.payloadPath)
	}
	if err != nil {
		return nil, err
	}

	if options.plan {
		tr = planTranscription(tr, tn)
	}
	return tr, nil
}

func loadPayloadCmd(options playOptions, tn tuning) tea.Cmd {
	return func() tea.Msg {
		tr, err := prepareTranscription(options, tn)
		return loadedPayloadMsg{tr, err}
	}
}

func preparedPayloadCmd(tr *transcription, plan bool, tn tuning) tea.Cmd {
	return func() tea.Msg {
		if plan {
			tr = planTranscription(tr, tn)
		}
		return loadedPayloadMsg{tr, nil}
	}
}

func loadAudioCmd(audioPath string, spkr *audioSpeaker) tea.Cmd {
	return func() tea.Msg {
		log.Info("loading backing track", "path", audioPath)
		track, err := loadBackingTrack(spkr, audioPath)
		if err != nil {
			return loadedAudioMsg{nil, err}
		}
		return loadedAudioMsg{&track, nil}
	}
}

func listMidiTracksCmd(midiPath string) tea.Cmd {
	return func() tea.Msg {
		tracks, err := midiTrackSummaries(midiPath)
		return loadedTracksMsg{tracks, err}
	}
}

func (m loadTranscriptionModel) selectTrack(track int) (loadTranscriptionModel, tea.Cmd) {
	log.Info("midi track selected", "track", track)
	m.options.track = track
	m.menuList = nil
	return m, loadPayloadCmd(m.options, m.settings.tuning)
}

func (m loadTranscriptionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	sm, scmd := m.spinner.Update(msg)
	m.spinner = sm

	switch msg := msg.(type) {
	case loadedPayloadMsg:
		m.payload = &msg
		if msg.err != nil {
			log.Error("failed to load transcription", "err", msg.err)
		}
	case loadedAudioMsg:
		m.audio = &msg
		if msg.err != nil {
			log.Error("failed to load backing track", "err", msg.err)
		}
	case loadedTracksMsg:
		m.tracks = &msg
		if msg.err != nil {
			m.payload = &loadedPayloadMsg{nil, msg.err}
			return m, scmd
		}

		switch len(msg.tracks) {
		case 0:
			// nothing to pick, import everything and let it come back empty
			return m.selectTrack(-1)
		case 1:
			return m.selectTrack(msg.tracks[0].index)
		}

		listItems := make([]list.Item, len(msg.tracks))
		for i, track := range msg.tracks {
			listItems[i] = track
		}
		trackList := list.New(listItems, createListDd(), 0, 0)
		trackList.Title = "Available Tracks"
		trackList.SetSize(50, 4+3*len(listItems))
		trackList.SetShowStatusBar(false)
		trackList.SetFilteringEnabled(false)
		trackList.SetShowHelp(false)
		trackList.DisableQuitKeybindings()
		styleList(&trackList)
		m.menuList = &trackList
	case tea.KeyMsg:
		if m.menuList == nil {
			break
		}
		if msg.String() == "enter" {
			if summary, ok := m.menuList.SelectedItem().(midiTrackSummary); ok {
				return m.selectTrack(summary.index)
			}
			break
		}
		menuList, cmd := m.menuList.Update(msg)
		m.menuList = &menuList
		return m, tea.Batch(scmd, cmd)
	}
	return m, scmd
}

func (m loadTranscriptionModel) choosingTrack() bool {
	return m.menuList != nil
}

func (m loadTranscriptionModel) audioReady() bool {
	if m.options.audioPath == "" {
		return true
	}
	return m.audio != nil && m.audio.err == nil
}

func (m loadTranscriptionModel) failed() bool {
	return (m.payload != nil && m.payload.err != nil) ||
		(m.audio != nil && m.audio.err != nil)
}

func (m loadTranscriptionModel) finishedSuccessfully() bool {
	return m.payload != nil && m.payload.err == nil && m.audioReady()
}
