package tui

import (
	"fmt"
	"strings"
	"time"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unowned-ai/moodtrend/pkg/checkin"
	"github.com/unowned-ai/moodtrend/pkg/mood"
	"github.com/unowned-ai/moodtrend/pkg/records"
)

type model struct {
	svc       *checkin.Service
	storeName string

	subjects []records.Subject
	samples  []mood.Sample
	insights checkin.Insights
	alerts   []records.Alert
	loaded   string // subject id the detail columns belong to

	columnFocus int // 0 = subjects, 1 = check-ins
	width       int
	height      int
	err         error
	status      string // last action feedback

	quitting bool

	subjectCursor int
	sampleCursor  int

	// Check-in prompt: a digit picks the mood, the note is optional.
	noting          bool
	pendingCategory mood.Category
	noteInput       textinput.Model

	addingSubject bool
	subjectInput  textinput.Model
	selectID      string // subject to put the cursor on after the next reload

	marqueeOffset int
	marqueeTimer  int
}

func initModel(svc *checkin.Service, storeName string) model {
	note := textinput.New()
	note.Placeholder = "Optional note, enter to save"
	note.CharLimit = checkin.MaxNoteLength

	subject := textinput.New()
	subject.Placeholder = "Subject id"
	subject.CharLimit = checkin.MaxSubjectIDLength

	return model{
		svc:          svc,
		storeName:    storeName,
		subjects:     []records.Subject{},
		noteInput:    note,
		subjectInput: subject,
	}
}

func tick() tea.Cmd {
	return tea.Tick(marqueeTickDuration, func(t time.Time) tea.Msg {
		return t
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(listSubjects(m.svc), tick())
}

func (m model) selectedSubject() (string, bool) {
	if m.subjectCursor < 0 || m.subjectCursor >= len(m.subjects) {
		return "", false
	}
	return m.subjects[m.subjectCursor].ID, true
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case error:
		m.err = msg
		return m, nil

	case subjectsMsg:
		m.subjects = msg
		if m.selectID != "" {
			for i, s := range m.subjects {
				if s.ID == m.selectID {
					m.subjectCursor = i
					m.sampleCursor = 0
				}
			}
			m.selectID = ""
		}
		if m.subjectCursor >= len(m.subjects) {
			m.subjectCursor = max(len(m.subjects)-1, 0)
		}
		if id, ok := m.selectedSubject(); ok {
			return m, loadSubject(m.svc, id)
		}
		return m, nil

	case subjectDetailsMsg:
		// Ignore stale loads after the cursor already moved on.
		if id, ok := m.selectedSubject(); !ok || id != msg.subjectID {
			return m, nil
		}
		m.loaded = msg.subjectID
		m.samples = msg.samples
		m.insights = msg.insights
		m.alerts = msg.alerts
		if m.sampleCursor >= len(m.samples) {
			m.sampleCursor = max(len(m.samples)-1, 0)
		}
		return m, nil

	case recordedMsg:
		m.status = fmt.Sprintf("Recorded %s for %s.", msg.result.Sample.Category, msg.result.Sample.SubjectID)
		if msg.result.Alert != nil {
			m.status += " Alert raised."
		}
		return m, listSubjects(m.svc)

	case subjectCreatedMsg:
		m.selectID = msg.subject.ID
		m.columnFocus = 0
		m.status = fmt.Sprintf("Press 1-5 to record the first check-in for %s.", msg.subject.ID)
		return m, listSubjects(m.svc)

	case dismissedMsg:
		m.status = "Alert dismissed."
		return m, loadSubject(m.svc, msg.alert.SubjectID)

	case tea.KeyMsg:
		if m.noting {
			return m.updateNote(msg)
		}
		if m.addingSubject {
			return m.updateNewSubject(msg)
		}
		return m.updateRoot(msg)

	case time.Time:
		m.marqueeTimer++
		if m.marqueeTimer >= 10 {
			m.marqueeTimer = 0
			m.marqueeOffset++
		}
		return m, tick()
	}

	return m, nil
}

func (m model) updateNote(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		id, ok := m.selectedSubject()
		m.noting = false
		note := m.noteInput.Value()
		m.noteInput.Reset()
		m.noteInput.Blur()
		if !ok {
			return m, nil
		}
		return m, recordMood(m.svc, checkin.RecordInput{SubjectID: id, Category: string(m.pendingCategory), Note: note})
	case tea.KeyEsc:
		m.noting = false
		m.noteInput.Reset()
		m.noteInput.Blur()
		m.status = "Check-in cancelled."
		return m, nil
	}
	var cmd tea.Cmd
	m.noteInput, cmd = m.noteInput.Update(msg)
	return m, cmd
}

func (m model) updateNewSubject(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		id := strings.TrimSpace(m.subjectInput.Value())
		if id == "" {
			m.status = "Subject id cannot be empty."
			return m, nil
		}
		m.addingSubject = false
		m.subjectInput.Reset()
		m.subjectInput.Blur()
		return m, createSubject(m.svc, id)
	case tea.KeyEsc:
		m.addingSubject = false
		m.subjectInput.Reset()
		m.subjectInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.subjectInput, cmd = m.subjectInput.Update(msg)
	return m, cmd
}

func (m model) updateRoot(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)

	case "up", "k":
		if m.columnFocus == 0 && m.subjectCursor > 0 {
			m.subjectCursor--
			m.sampleCursor = 0
			return m, loadSubject(m.svc, m.subjects[m.subjectCursor].ID)
		}
		if m.columnFocus == 1 && m.sampleCursor > 0 {
			m.sampleCursor--
		}

	case "down", "j":
		if m.columnFocus == 0 && m.subjectCursor < len(m.subjects)-1 {
			m.subjectCursor++
			m.sampleCursor = 0
			return m, loadSubject(m.svc, m.subjects[m.subjectCursor].ID)
		}
		if m.columnFocus == 1 && m.sampleCursor < len(m.samples)-1 {
			m.sampleCursor++
		}

	case "right", "l":
		if m.columnFocus == 0 && len(m.samples) > 0 {
			m.columnFocus = 1
			m.sampleCursor = len(m.samples) - 1
		}

	case "left", "h":
		m.columnFocus = 0

	case "n":
		m.addingSubject = true
		m.subjectInput.Reset()
		m.subjectInput.Focus()

	case "r":
		return m, listSubjects(m.svc)

	case "x":
		if len(m.alerts) == 0 {
			m.status = "No open alerts."
			return m, nil
		}
		return m, dismissAlert(m.svc, m.alerts[len(m.alerts)-1].ID)

	case "1", "2", "3", "4", "5":
		if _, ok := m.selectedSubject(); !ok {
			m.status = "Create a subject with 'n' first."
			return m, nil
		}
		m.pendingCategory = mood.Categories()[key[0]-'1']
		m.noting = true
		m.noteInput.Reset()
		m.noteInput.Focus()
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return "Check-ins saved. Take care.\n"
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	titleBar := titleStyle.Width(m.width).Render("moodtrend - mood check-ins and trends")

	leftWidth := m.width / 4
	middleWidth := m.width / 4
	rightWidth := m.width - leftWidth - middleWidth
	const chrome = 5 // border + padding per panel
	panelHeight := max(m.height-4, 1)

	left := m.viewSubjects(leftWidth - chrome)
	middle := m.viewSamples(middleWidth - chrome)
	right := m.viewInsights(rightWidth - chrome)

	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Width(leftWidth).Height(panelHeight).Render(left),
		panelStyle.Width(middleWidth).Height(panelHeight).Render(middle),
		lipgloss.NewStyle().Padding(0, 2).Width(rightWidth).Height(panelHeight).Render(right),
	)

	footer := "\n↑/↓ navigate • ←/→ switch column • 1 happy 2 neutral 3 sad 4 stressed 5 depressed • x dismiss alert • n new subject • r refresh • q quit"
	if m.status != "" {
		footer = "\n" + m.status + footer
	}
	return titleBar + "\n\n" + columns + footerStyle.Width(m.width).Render(footer)
}

func (m model) viewSubjects(width int) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("Subjects"))
	b.WriteString("\n\n")
	if len(m.subjects) == 0 {
		b.WriteString("No subjects yet. Press 'n' to add one.\n")
	}
	for i, s := range m.subjects {
		label := s.ID
		if s.DisplayName != "" {
			label = fmt.Sprintf("%s (%s)", s.DisplayName, s.ID)
		}
		avail := width - 2
		if i == m.subjectCursor {
			b.WriteString("> " + selectedStyle.Render(marquee(label, avail, m.marqueeOffset)) + "\n")
		} else {
			b.WriteString("  " + inactiveStyle.Render(truncate(label, avail)) + "\n")
		}
	}
	if m.addingSubject {
		b.WriteString("\n" + labelStyle.Render("New: ") + m.subjectInput.View() + "\n")
	}
	b.WriteString("\n" + footerStyle.Render("store: "+m.storeName))
	return b.String()
}

func (m model) viewSamples(width int) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("Check-ins"))
	b.WriteString("\n\n")
	if len(m.samples) == 0 {
		b.WriteString("  No check-ins yet.\n")
		return b.String()
	}
	// Newest first.
	for i := len(m.samples) - 1; i >= 0; i-- {
		s := m.samples[i]
		pointer := "  "
		if m.columnFocus == 1 && i == m.sampleCursor {
			pointer = "> "
		}
		line := fmt.Sprintf("%s %s", s.RecordedAt.Local().Format("01-02 15:04"), moodStyle(s.Category).Render(string(s.Category)))
		b.WriteString(pointer + line + "\n")
		if m.columnFocus == 1 && i == m.sampleCursor && s.Note != "" {
			b.WriteString("    " + listStyle.Render(truncate(s.Note, width-4)) + "\n")
		}
	}
	return b.String()
}

func (m model) viewInsights(width int) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("Insights"))
	b.WriteString("\n\n")

	if m.noting {
		b.WriteString(labelStyle.Render("Mood: ") + moodStyle(m.pendingCategory).Render(string(m.pendingCategory)) + "\n")
		b.WriteString(labelStyle.Render("Note: ") + m.noteInput.View() + "\n\n")
		b.WriteString("(enter to save, esc to cancel)\n")
		return b.String()
	}
	if m.loaded == "" {
		b.WriteString("Select a subject to view insights.")
		return b.String()
	}

	ins := m.insights
	b.WriteString(labelStyle.Render("Status: ") + statusStyle(ins.Status).Render(string(ins.Status)) + "\n")
	b.WriteString(labelStyle.Render("Trend: ") + fmt.Sprintf("%s, %s risk", ins.Trend.Direction, ins.Trend.RiskLevel) + "\n")
	if ins.Window.Sufficient {
		b.WriteString(labelStyle.Render("Average: ") + fmt.Sprintf("%.2f / 5 over %d, %d low of last 3", ins.Window.Average, len(ins.Window.Scores), ins.Window.BadMoodsInRow) + "\n")
	} else {
		b.WriteString(labelStyle.Render("Average: ") + fmt.Sprintf("needs %d check-ins", mood.MinSamples) + "\n")
	}
	b.WriteString(labelStyle.Render("Forecast: ") + fmt.Sprintf("%s (%.0f%%)", ins.Forecast.Prediction, ins.Forecast.Confidence*100) + "\n\n")

	b.WriteString(labelStyle.Render("Suggestions") + "\n")
	for _, s := range ins.Suggestions {
		b.WriteString(listStyle.Render("• "+lipgloss.NewStyle().Width(max(width-2, 10)).Render(s)) + "\n")
	}
	b.WriteString("\n" + labelStyle.Render(fmt.Sprintf("Open alerts (%d)", len(m.alerts))) + "\n")
	for _, a := range m.alerts {
		b.WriteString(errorStyle.Render(fmt.Sprintf("[%s] %s", a.Severity, a.CreatedAt.Local().Format("01-02 15:04"))) + " " + a.Message + "\n")
	}
	return b.String()
}

// ShowTUI runs the interactive browser until the user quits.
func ShowTUI(svc *checkin.Service, storeName string) error {
	p := tea.NewProgram(initModel(svc, storeName), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
