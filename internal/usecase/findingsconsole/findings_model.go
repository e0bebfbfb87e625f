package findingsconsole

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pinkong/internal/domain/quality"
	"pinkong/internal/usecase/docchain"
)

const maxShownFindings = 12

type FindingsOptions struct {
	RootID          uint64
	RefreshInterval time.Duration
}

type findingsModel struct {
	ctx             context.Context
	service         *docchain.Service
	rootID          uint64
	refreshInterval time.Duration

	findings      []quality.Finding
	counts        map[quality.FindingSeverity]int
	selectedIndex int
	status        string
	lastChecked   time.Time
}

type findingsLoadedMsg struct {
	findings []quality.Finding
	counts   map[quality.FindingSeverity]int
	err      error
}

type persistDoneMsg struct {
	count int
	err   error
}

type tickMsg struct{}

func NewFindingsModel(ctx context.Context, service *docchain.Service, options FindingsOptions) tea.Model {
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &findingsModel{
		ctx:             ctx,
		service:         service,
		rootID:          options.RootID,
		refreshInterval: interval,
		status:          "loading",
	}
}

func (m *findingsModel) Init() tea.Cmd {
	return tea.Batch(m.loadFindingsCmd(), m.tickCmd())
}

func (m *findingsModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadFindingsCmd(), m.tickCmd())
	case findingsLoadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.findings = msg.findings
		m.counts = msg.counts
		m.lastChecked = time.Now()
		if m.selectedIndex >= len(m.findings) {
			m.selectedIndex = len(m.findings) - 1
		}
		if m.selectedIndex < 0 {
			m.selectedIndex = 0
		}
		if len(m.findings) == 0 {
			m.status = "chain is consistent"
		} else {
			m.status = fmt.Sprintf("refreshed, %d findings", len(m.findings))
		}
		return m, nil
	case persistDoneMsg:
		if msg.err != nil {
			m.status = "persist failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("persisted %d findings", msg.count)
		return m, m.loadFindingsCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "refreshing"
			return m, m.loadFindingsCmd()
		case "p":
			m.status = "persisting"
			return m, m.persistCmd()
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.findings)-1 {
				m.selectedIndex++
			}
			return m, nil
		}
	}
	return m, nil
}

func (m *findingsModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Consistency Findings"))
	builder.WriteString("\n")
	checked := "never"
	if !m.lastChecked.IsZero() {
		checked = m.lastChecked.Format("15:04:05")
	}
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"root=%d refresh=%s checked=%s", m.rootID, m.refreshInterval, checked)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("HIGH=%d MEDIUM=%d LOW=%d\n\n",
		m.counts[quality.SeverityHigh], m.counts[quality.SeverityMedium], m.counts[quality.SeverityLow]))

	builder.WriteString(sectionStyle.Render("Findings"))
	builder.WriteString("\n")
	if len(m.findings) == 0 {
		builder.WriteString(dimStyle.Render("- no findings"))
		builder.WriteString("\n\n")
	} else {
		start := 0
		if m.selectedIndex >= maxShownFindings {
			start = m.selectedIndex - maxShownFindings + 1
		}
		end := start + maxShownFindings
		if end > len(m.findings) {
			end = len(m.findings)
		}
		for index := start; index < end; index++ {
			finding := m.findings[index]
			line := fmt.Sprintf("%s %s %s=%d %s",
				finding.Rule,
				severityStyle(finding.Severity).Render(string(finding.Severity)),
				finding.TargetKind,
				finding.TargetID,
				finding.Message,
			)
			if index == m.selectedIndex {
				builder.WriteString(selectedStyle.Render("> " + line))
			} else {
				builder.WriteString("  " + line)
			}
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + m.status)
	builder.WriteString("\n\n")

	builder.WriteString(dimStyle.Render("Keys: ↑/k ↓/j move  g refresh  p persist  q quit"))
	return builder.String()
}

func severityStyle(severity quality.FindingSeverity) lipgloss.Style {
	switch severity {
	case quality.SeverityHigh:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	case quality.SeverityMedium:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	}
}

func (m *findingsModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *findingsModel) loadFindingsCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.service.CheckConsistency(m.ctx, docchain.CheckConsistencyInput{RootID: m.rootID})
		if err != nil {
			return findingsLoadedMsg{err: err}
		}
		return findingsLoadedMsg{findings: out.Findings, counts: out.Counts}
	}
}

func (m *findingsModel) persistCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.service.CheckConsistency(m.ctx, docchain.CheckConsistencyInput{RootID: m.rootID, Persist: true})
		if err != nil {
			return persistDoneMsg{err: err}
		}
		return persistDoneMsg{count: len(out.Findings)}
	}
}
