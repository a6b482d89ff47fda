package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ridedash/internal/service"
	"ridedash/internal/strava"
)

var phaseTitles = map[string]string{
	service.PhaseRides:   "Fetching rides",
	service.PhaseStreams: "Downloading streams",
	service.PhaseMetrics: "Computing metrics",
}

// SyncModel is the sync screen model
type SyncModel struct {
	syncService *service.SyncService
	updates     chan service.SyncProgress
	spinner     spinner.Model
	bar         progress.Model
	last        service.SyncProgress
	syncing     bool
	result      *service.SyncResult
	err         error
	done        bool
}

// NewSyncModel creates a new sync model
func NewSyncModel(ss *service.SyncService) SyncModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return SyncModel{
		syncService: ss,
		spinner:     sp,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// Syncing reports whether a sync is running
func (m SyncModel) Syncing() bool {
	return m.syncing
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

type syncProgressMsg service.SyncProgress

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncProgressMsg:
		m.last = service.SyncProgress(msg)
		return m, tea.Batch(m.bar.SetPercent(m.percent()), waitForProgress(m.updates))

	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, func() tea.Msg { return SyncCompleteMsg{} }

	case spinner.TickMsg:
		if !m.syncing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd

	case tea.KeyMsg:
		if m.syncing {
			return m, nil
		}
		switch msg.String() {
		case "enter", "s":
			m.syncing = true
			m.done = false
			m.err = nil
			m.result = nil
			m.last = service.SyncProgress{}
			m.updates = make(chan service.SyncProgress, 16)
			return m, tea.Batch(
				m.runSync(m.updates),
				waitForProgress(m.updates),
				m.spinner.Tick,
				m.bar.SetPercent(0),
			)
		}
	}
	return m, nil
}

func (m SyncModel) runSync(updates chan service.SyncProgress) tea.Cmd {
	ss := m.syncService
	return func() tea.Msg {
		result, err := ss.SyncAll(context.Background(), updates)
		return SyncDoneMsg{Result: result, Err: err}
	}
}

// waitForProgress relays one update; SyncAll closes the channel when done
func waitForProgress(updates <-chan service.SyncProgress) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-updates
		if !ok {
			return nil
		}
		return syncProgressMsg(p)
	}
}

func (m SyncModel) percent() float64 {
	if m.last.Total == 0 {
		return 0
	}
	return float64(m.last.Completed) / float64(m.last.Total)
}

// View renders the sync screen
func (m SyncModel) View() string {
	sections := []string{cardTitleStyle.Render("Strava Sync")}

	switch {
	case m.err != nil:
		sections = append(sections,
			errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)),
			m.renderSummary(),
			"\n"+statusStyle.Render("  Press 's' or Enter to retry"),
		)
	case m.done:
		sections = append(sections,
			successStyle.Render("\n  Sync complete!"),
			m.renderSummary(),
			"\n"+statusStyle.Render("  Press '1' for fitness or '2' for rides"),
		)
	case m.syncing:
		sections = append(sections, m.renderProgress())
	default:
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	short, daily := m.syncService.RateLimitStatus()
	lines := []string{
		"",
		"  This will sync your rides from Strava:",
		"",
		"  1. Fetch recent rides",
		"  2. Download stream data",
		"  3. Compute ride metrics",
		"",
		statusStyle.Render(fmt.Sprintf("  API limits: %d/%d (15min), %d/%d (daily)",
			short, strava.DefaultShortLimit, daily, strava.DefaultDailyLimit)),
		statusStyle.Render("  Press 's' or Enter to start sync"),
	}
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	title, ok := phaseTitles[m.last.Phase]
	if !ok {
		title = "Starting"
	}

	lines := []string{
		"",
		fmt.Sprintf("  %s %s...", m.spinner.View(), title),
		"",
		"  " + m.bar.View(),
	}
	if m.last.Total > 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("  %d of %d", m.last.Completed, m.last.Total)))
	}
	if m.last.CurrentRide != "" {
		lines = append(lines, mutedStyle.Render("  "+truncateName(m.last.CurrentRide, 50)))
	}
	if m.last.Error != nil {
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %v", m.last.Error)))
	}
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	r := m.result
	if r == nil {
		return ""
	}

	lines := []string{""}
	if r.RidesStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d rides synced", r.RidesStored)))
	} else {
		lines = append(lines, statusStyle.Render("  No new rides"))
	}
	if r.StreamsFetched > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d streams downloaded", r.StreamsFetched)))
	}
	if r.MetricsComputed > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d rides analyzed", r.MetricsComputed)))
	}
	if len(r.Errors) > 0 {
		lines = append(lines, "", warningStyle.Render(fmt.Sprintf("  %d errors occurred", len(r.Errors))))
		for i, err := range r.Errors {
			if i == 3 {
				lines = append(lines, mutedStyle.Render(fmt.Sprintf("  ... and %d more", len(r.Errors)-3)))
				break
			}
			lines = append(lines, mutedStyle.Render("  "+err.Error()))
		}
	}
	return strings.Join(lines, "\n")
}
