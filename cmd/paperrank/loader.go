package main

import (
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const loadingMessage = "Analyzing papers with AI... This may take a moment."

// stopMsg ends the loader program.
type stopMsg struct{}

type loaderModel struct {
	spinner spinner.Model
	done    bool
}

func newLoaderModel() loaderModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	return loaderModel{spinner: spin}
}

func (m loaderModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + loadingMessage
}

// loader is the terminal loading indicator for a running search. It runs a
// bubbletea program that owns only its output writer: no input, no signals.
type loader struct {
	w io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

func newLoader(w io.Writer) *loader {
	return &loader{w: w}
}

func (l *loader) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.program != nil {
		return
	}

	p := tea.NewProgram(newLoaderModel(),
		tea.WithOutput(l.w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run()
	}()
	l.program, l.done = p, done
}

func (l *loader) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.program == nil {
		return
	}
	l.program.Send(stopMsg{})
	<-l.done
	l.program, l.done = nil, nil
}
