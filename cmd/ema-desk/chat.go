package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/koscakluka/ema-desk/core/assistant"
	"github.com/koscakluka/ema-desk/core/segmenter"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

func newChatCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant in an interactive terminal session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			// The TUI owns the terminal, logs only go to a file when asked for.
			var logOutput io.Writer = io.Discard
			if cfg.Logging.Verbose {
				logFile, err := tea.LogToFile("ema-desk.log", "ema-desk")
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer logFile.Close()
				logOutput = logFile
			}
			defer setupLogging(cfg, logOutput)()

			var program *tea.Program
			send := func(msg tea.Msg) {
				if program != nil {
					program.Send(msg)
				}
			}

			a, err := newAssistant(cfg,
				assistant.WithSpeaker(assistant.SpeakerFunc(func(_ context.Context, sentence string) error {
					send(sentenceMsg(sentence))
					return nil
				})),
				assistant.WithEventHandler(func(event segmenter.Event) {
					if event.Kind == segmenter.KindClipboardText {
						send(clipboardMsg(event.Text))
					}
				}),
			)
			if err != nil {
				return err
			}

			program = tea.NewProgram(newChatModel(cmd.Context(), a), tea.WithInput(os.Stdin), tea.WithOutput(cmd.OutOrStdout()))
			_, err = program.Run()
			a.Cancel()
			return err
		},
	}
}

type (
	sentenceMsg  string
	clipboardMsg string
	turnDoneMsg  struct {
		turn assistant.Turn
		err  error
	}
)

type lineKind int

const (
	lineUser lineKind = iota
	lineAssistant
	lineClipboard
	lineNotice
	lineError
)

type chatLine struct {
	kind lineKind
	text string
}

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle()
	clipboardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Border(lipgloss.NormalBorder(), false, false, false, true).PaddingLeft(1)
	noticeStyle    = lipgloss.NewStyle().Faint(true).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle      = lipgloss.NewStyle().Faint(true)
)

type chatModel struct {
	ctx       context.Context
	assistant *assistant.Assistant

	input   textinput.Model
	spinner spinner.Model

	lines []chatLine
	width int
	busy  bool
}

func newChatModel(ctx context.Context, a *assistant.Assistant) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask something..."
	input.Prompt = "> "
	input.Focus()

	return chatModel{
		ctx:       ctx,
		assistant: a,
		input:     input,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:     80,
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.assistant.Cancel()
			return m, tea.Quit

		case "ctrl+x":
			if m.busy {
				m.assistant.Cancel()
			}
			return m, nil

		case "ctrl+l":
			if m.busy {
				m.lines = append(m.lines, chatLine{kind: lineNotice, text: "wait for the reply to finish before clearing"})
				return m, nil
			}
			m.assistant.ClearHistory()
			m.lines = []chatLine{{kind: lineNotice, text: "history cleared"}}
			return m, nil

		case "ctrl+b":
			m.assistant.AttachClipboard()
			m.lines = append(m.lines, chatLine{kind: lineNotice, text: "clipboard will be attached to the next prompt"})
			return m, nil

		case "enter":
			prompt := strings.TrimSpace(m.input.Value())
			if prompt == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			m.lines = append(m.lines, chatLine{kind: lineUser, text: prompt})
			return m, tea.Batch(m.respond(prompt), m.spinner.Tick)
		}

	case sentenceMsg:
		m.lines = append(m.lines, chatLine{kind: lineAssistant, text: string(msg)})
		return m, nil

	case clipboardMsg:
		m.lines = append(m.lines, chatLine{kind: lineClipboard, text: string(msg)})
		return m, nil

	case turnDoneMsg:
		m.busy = false
		switch {
		case msg.err != nil:
			m.lines = append(m.lines, chatLine{kind: lineError, text: msg.err.Error()})
		case msg.turn.Cancelled:
			m.lines = append(m.lines, chatLine{kind: lineNotice, text: "reply cancelled"})
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) respond(prompt string) tea.Cmd {
	return func() tea.Msg {
		turn, err := m.assistant.Respond(m.ctx, prompt)
		return turnDoneMsg{turn: turn, err: err}
	}
}

func (m chatModel) View() string {
	var b strings.Builder
	wrapWidth := max(m.width-2, 20)

	for _, line := range m.lines {
		b.WriteString(renderLine(line, wrapWidth))
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString(m.spinner.View() + " ")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")

	help := "enter send • ctrl+x cancel • ctrl+l clear • ctrl+b attach clipboard • esc quit"
	if m.assistant.ClipboardAttached() {
		help = "[clipboard attached] " + help
	}
	b.WriteString(helpStyle.Render(wordwrap.String(help, wrapWidth)))
	return b.String()
}

func renderLine(line chatLine, width int) string {
	switch line.kind {
	case lineUser:
		return userStyle.Render(wordwrap.String("you: "+line.text, width))
	case lineClipboard:
		// Clipboard text keeps its own line breaks, it is usually code.
		return clipboardStyle.Render(line.text)
	case lineNotice:
		return noticeStyle.Render(wordwrap.String(line.text, width))
	case lineError:
		return errorStyle.Render(wordwrap.String("error: "+line.text, width))
	default:
		return assistantStyle.Render(wordwrap.String(line.text, width))
	}
}
