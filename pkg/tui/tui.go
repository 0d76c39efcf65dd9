// Package tui provides a terminal user interface for ledcostume
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/ledcostume/pkg/config"
	"github.com/james-see/ledcostume/pkg/converter"
	"github.com/james-see/ledcostume/pkg/timeline"
)

// Stage-lighting color scheme
var (
	// Primary colors - warm amber and cool cyan
	amber      = lipgloss.Color("#FFB000")
	cyan       = lipgloss.Color("#00E5FF")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(amber).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(cyan).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	rulerStyle = lipgloss.NewStyle().Foreground(cyan)
	offStyle   = lipgloss.NewStyle().Foreground(darkGray)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateWorking
	StatePreview
	StateResult
)

// Action is what a menu item does with the picked file
type Action int

const (
	ActionPreviewPattern Action = iota
	ActionPreviewScenario
	ActionExportMIDI
	ActionImportMIDI
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
	Types       []string
}

var menuItems = []MenuItem{
	{Title: "Preview pattern", Description: "Play a pattern, with its track when available", Action: ActionPreviewPattern, Types: []string{".json"}},
	{Title: "Preview scenario", Description: "Play every costume of a scenario side by side", Action: ActionPreviewScenario, Types: []string{".json"}},
	{Title: "Pattern → MIDI", Description: "Export a pattern as a MIDI file", Action: ActionExportMIDI, Types: []string{".json"}},
	{Title: "MIDI → Pattern", Description: "Import a MIDI file written by the exporter", Action: ActionImportMIDI, Types: []string{".mid", ".midi"}},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

// Model represents the TUI model
type Model struct {
	cfg          *config.Config
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	outputFile   string
	item         MenuItem
	preview      *preview
	status       string
	err          error
	width        int
	height       int
}

// previewLoadedMsg signals a preview is ready
type previewLoadedMsg struct {
	preview *preview
	err     error
}

// conversionDoneMsg signals conversion completion
type conversionDoneMsg struct {
	outputFile string
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New(cfg *config.Config) Model {
	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = []string{".json", ".mid", ".midi"}
	fp.CurrentDirectory = cfg.DataDir
	if _, err := os.Stat(cfg.DataDir); err != nil {
		fp.CurrentDirectory, _ = os.Getwd()
	}

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(amber)

	return Model{
		cfg:        cfg,
		state:      StateMenu,
		filePicker: fp,
		spinner:    s,
		width:      80,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		// Check for escape/quit keys first
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		// Pass all other messages to the file picker
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		// Check if file was selected
		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, m.perform())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StatePreview:
			return m.updatePreview(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case frameMsg:
		if m.state == StatePreview && m.preview != nil {
			return m, m.preview.advance(msg.run)
		}

	case previewLoadedMsg:
		if msg.err != nil {
			m.state = StateResult
			m.err = msg.err
			return m, nil
		}
		m.state = StatePreview
		m.preview = msg.preview
		m.status = ""
		return m, nil

	case conversionDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		m.item = menuItems[m.menuIndex]
		if m.item.Action == ActionExit {
			return m, tea.Quit
		}
		m.state = StateFilePicker
		m.filePicker.AllowedTypes = m.item.Types
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.preview
	m.status = ""
	switch msg.String() {
	case " ":
		return m, p.toggle()
	case "s":
		p.stop()
	case "left", "h":
		m.seek(-seekStep)
	case "right", "l":
		m.seek(seekStep)
	case "+", "=":
		p.view.Zoom(0.5, p.session.Cursor())
	case "-":
		p.view.Zoom(2, p.session.Cursor())
	case "esc":
		p.close()
		m.preview = nil
		m.state = StateMenu
	case "q", "ctrl+c":
		p.close()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) seek(delta timeline.Milliseconds) {
	err := m.preview.seek(delta)
	switch {
	case isSeekDisabled(err):
		m.status = "seeking needs an audio track"
	case err != nil:
		m.status = err.Error()
	}
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.outputFile = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// perform runs the selected menu action on the picked file
func (m Model) perform() tea.Cmd {
	cfg, path := m.cfg, m.selectedFile
	switch m.item.Action {
	case ActionPreviewPattern:
		return func() tea.Msg {
			p, err := loadPatternPreview(cfg, path)
			return previewLoadedMsg{preview: p, err: err}
		}
	case ActionPreviewScenario:
		return func() tea.Msg {
			p, err := loadScenarioPreview(cfg, path)
			return previewLoadedMsg{preview: p, err: err}
		}
	}
	return m.performConversion()
}

func (m Model) performConversion() tea.Cmd {
	cfg, path, action := m.cfg, m.selectedFile, m.item.Action
	return func() tea.Msg {
		conv := converter.New(cfg.Export.Resolution, cfg.Export.Tempo)

		outputExt := ".mid"
		if action == ActionImportMIDI {
			outputExt = ".json"
		}

		// Generate output filename
		base := strings.TrimSuffix(path, filepath.Ext(path))
		outputFile := base + outputExt

		if err := conv.ConvertFile(path, outputFile); err != nil {
			return conversionDoneMsg{err: err}
		}
		return conversionDoneMsg{outputFile: outputFile}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	// Header
	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateWorking:
		s.WriteString(m.viewWorking())
	case StatePreview:
		s.WriteString(m.viewPreview())
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("space: play/pause • s: stop • ←/→: seek • +/-: zoom • esc: back • q: quit"))
		return s.String()
	case StateResult:
		s.WriteString(m.viewResult())
	}

	// Footer help
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT ACTION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(cyan).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" %s: SELECT FILE ", strings.ToUpper(m.item.Title))))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewWorking() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" WORKING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Loading %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render("  " + m.item.Title))

	return boxStyle.Render(s.String())
}

func (m Model) viewPreview() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" PREVIEW %s ", m.preview.title)))
	s.WriteString("\n\n")
	// box border and padding take 8 columns
	s.WriteString(m.preview.render(m.width - 8))
	if m.status != "" {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(m.status))
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s failed: %s", m.item.Title, m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Conversion complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(fmt.Sprintf("Output: %s", filepath.Base(m.outputFile)))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   _     _____ ____                _
  | |   | ____|  _ \  ___ ___  ___| |_ _   _ _ __ ___   ___
  | |   |  _| | | | |/ __/ _ \/ __| __| | | | '_ ` + "`" + ` _ \ / _ \
  | |___| |___| |_| | (_| (_) \__ \ |_| |_| | | | | | |  __/
  |_____|_____|____/ \___\___/|___/\__|\__,_|_| |_| |_|\___|
`
	return lipgloss.NewStyle().Foreground(amber).Render(logo)
}

// Run starts the TUI application
func Run(cfg *config.Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
