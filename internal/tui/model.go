// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"verbiverse-quiz/internal/app"
	"verbiverse-quiz/internal/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Model implements the Bubble Tea quiz UI for a single wallet.
type Model struct {
	ctx     context.Context
	service *app.QuizService
	wallet  app.WalletProvider
	view    *app.ViewController
	input   textinput.Model

	pairIndex int
	snapshot  domain.Snapshot
	history   []domain.QuizSession
	result    *app.FinishResult
	status    string

	width  int
	height int
}

// NewModel constructs the quiz TUI. The wallet must already be connected.
func NewModel(ctx context.Context, service *app.QuizService, wallet app.WalletProvider) *Model {
	input := textinput.New()
	input.Placeholder = "Type your translation..."
	input.CharLimit = 200
	input.Width = 50

	m := &Model{
		ctx:     ctx,
		service: service,
		wallet:  wallet,
		view:    app.NewViewController(),
		input:   input,
	}
	m.refresh()
	return m
}

// Mode is the screen currently drawn.
func (m *Model) Mode() app.ViewMode {
	return m.view.Render(m.snapshot.Session)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.Mode() {
		case app.ModeQuiz:
			return m.updateQuiz(msg)
		case app.ModeResults:
			return m.updateResults(msg)
		case app.ModeHistory:
			return m.updateHistory(msg)
		default:
			return m.updateHome(msg)
		}
	}
	return m, nil
}

func (m *Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.pairIndex > 0 {
			m.pairIndex--
		}
	case "down", "j":
		if m.pairIndex < len(domain.LanguagePairs)-1 {
			m.pairIndex++
		}
	case "h":
		m.openHistory()
	case "enter":
		m.start()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) updateQuiz(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	session := m.snapshot.Session
	switch msg.Type {
	case tea.KeyEsc:
		if err := m.service.Abandon(m.ctx, m.wallet.Address()); err != nil {
			m.status = err.Error()
		}
		m.view.Exit()
		m.input.Blur()
		m.refresh()
		return m, nil
	case tea.KeyShiftTab:
		if prev, ok := app.PreviousIndex(session); ok {
			m.move(prev)
		}
		return m, nil
	case tea.KeyEnter, tea.KeyTab:
		if !app.CanAdvance(m.input.Value()) {
			m.status = "Type an answer before moving on."
			return m, nil
		}
		if app.IsLastQuestion(session) {
			if msg.Type == tea.KeyEnter {
				m.finish()
			}
			return m, nil
		}
		if next, ok := app.NextIndex(session); ok {
			m.move(next)
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		if err := m.service.Answer(m.ctx, m.wallet.Address(), session.CurrentQuestionIndex, value); err != nil {
			m.status = err.Error()
		}
		m.refresh()
	}
	return m, cmd
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "h":
		m.openHistory()
	case "enter", "esc":
		m.service.Reset(m.ctx, m.wallet.Address())
		m.result = nil
		m.view.GoHome()
		m.refresh()
	}
	return m, nil
}

func (m *Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter", "esc":
		m.view.GoHome()
	}
	return m, nil
}

func (m *Model) start() {
	pair := domain.LanguagePairs[m.pairIndex].Label
	if _, err := m.service.Begin(m.ctx, m.wallet, pair); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.result = nil
	m.view.StartQuiz()
	m.input.SetValue("")
	m.input.Focus()
	m.refresh()
}

func (m *Model) move(index int) {
	if err := m.service.Move(m.ctx, m.wallet.Address(), index); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.refresh()
	if s := m.snapshot.Session; s != nil {
		m.input.SetValue(s.Questions[s.CurrentQuestionIndex].UserAnswer)
		m.input.CursorEnd()
	}
}

func (m *Model) finish() {
	result, err := m.service.Finish(m.ctx, m.wallet.Address())
	if err != nil {
		m.status = err.Error()
		return
	}
	m.result = &result
	m.status = strings.Join(result.Warnings, "; ")
	m.input.Blur()
	m.refresh()
	m.view.Complete(m.snapshot.Session)
}

func (m *Model) openHistory() {
	history, err := m.service.History(m.ctx, m.wallet.Address())
	if err != nil {
		m.status = err.Error()
		return
	}
	m.history = history
	m.view.ViewHistory()
}

func (m *Model) refresh() {
	snap, err := m.service.Snapshot(m.ctx, m.wallet.Address())
	if err != nil {
		m.status = err.Error()
		return
	}
	m.snapshot = snap
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.Mode() {
	case app.ModeQuiz:
		body = m.renderQuiz()
	case app.ModeResults:
		body = m.renderResults()
	case app.ModeHistory:
		body = m.renderHistory()
	default:
		body = m.renderHome()
	}
	parts := []string{titleStyle.Render("VerbiVerse Quiz") + "  " + mutedStyle.Render(shortAddress(m.wallet.Address())), body}
	if m.status != "" {
		parts = append(parts, wrongStyle.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m *Model) renderHome() string {
	var b strings.Builder
	b.WriteString(renderStats(m.snapshot.Stats))
	b.WriteString("\n\nChoose a language pair:\n")
	for i, pair := range domain.LanguagePairs {
		cursor := "  "
		line := pair.Label
		if i == m.pairIndex {
			cursor = "> "
			line = promptStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}
	b.WriteString("\n" + footerStyle.Render("enter start • ↑/↓ choose • h history • q quit"))
	return b.String()
}

func (m *Model) renderQuiz() string {
	s := m.snapshot.Session
	q := s.Questions[s.CurrentQuestionIndex]
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n", s.LanguagePair, mutedStyle.Render(fmt.Sprintf("Question %d of %d", s.CurrentQuestionIndex+1, len(s.Questions))))
	b.WriteString(boxStyle.Render(promptStyle.Render(q.Text)) + "\n")
	fmt.Fprintf(&b, "Translate to %s:\n%s\n\n", q.TargetLanguage, m.input.View())
	b.WriteString(renderProgress(s) + "\n\n")
	action := "enter next"
	if app.IsLastQuestion(s) {
		action = "enter finish"
	}
	b.WriteString(footerStyle.Render(action + " • shift+tab previous • esc abandon"))
	return b.String()
}

func (m *Model) renderResults() string {
	s := m.snapshot.Session
	var b strings.Builder
	score := 0
	if s.Score != nil {
		score = *s.Score
	}
	fmt.Fprintf(&b, "Score: %s\n\n", promptStyle.Render(fmt.Sprintf("%d%%", score)))
	for i, q := range s.Questions {
		mark := wrongStyle.Render("✗")
		if q.IsCorrect != nil && *q.IsCorrect {
			mark = correctStyle.Render("✓")
		}
		fmt.Fprintf(&b, "%s %d. %s → %s\n", mark, i+1, q.Text, q.UserAnswer)
	}
	if m.result != nil && m.result.TransactionID != "" {
		fmt.Fprintf(&b, "\n%s\n", mutedStyle.Render("Recorded on chain: "+m.result.TransactionID))
	}
	b.WriteString("\n" + footerStyle.Render("enter home • h history • q quit"))
	return b.String()
}

func (m *Model) renderHistory() string {
	var b strings.Builder
	if len(m.history) == 0 {
		b.WriteString(mutedStyle.Render("No completed quizzes yet.") + "\n")
	}
	for _, s := range m.history {
		score := 0
		if s.Score != nil {
			score = *s.Score
		}
		fmt.Fprintf(&b, "%s  %-20s %3d%%  batch %d\n", s.StartTime.Local().Format("2006-01-02 15:04"), s.LanguagePair, score, s.BatchID)
	}
	b.WriteString("\n" + footerStyle.Render("enter home • q quit"))
	return b.String()
}

func renderStats(stats domain.UserStats) string {
	return fmt.Sprintf("Quizzes %d (completed %d) • Average %.1f%% • Streak %d day(s)",
		stats.TotalQuizzes, stats.CompletedQuizzes, stats.AverageScore, stats.StreakDays)
}

func renderProgress(s *domain.QuizSession) string {
	marks := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		switch {
		case i == s.CurrentQuestionIndex:
			marks[i] = promptStyle.Render("●")
		case strings.TrimSpace(q.UserAnswer) != "":
			marks[i] = correctStyle.Render("●")
		default:
			marks[i] = mutedStyle.Render("○")
		}
	}
	return strings.Join(marks, " ")
}

func shortAddress(address string) string {
	if len(address) < 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
