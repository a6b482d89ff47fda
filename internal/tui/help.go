package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

type keyHelp struct {
	key  string
	desc string
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []string{
		cardTitleStyle.Render("Keyboard Shortcuts"),
		m.renderSection("Navigation", []keyHelp{
			{"1", "Fitness"},
			{"2", "Ride list"},
			{"3 or s", "Sync screen"},
			{"?", "Help (this screen)"},
			{"esc", "Back / close help"},
			{"q", "Quit"},
		}),
		m.renderSection("Ride List", []keyHelp{
			{"j / down", "Move cursor down"},
			{"k / up", "Move cursor up"},
			{"pgdn / pgup", "Next / previous page"},
			{"enter", "Open ride details"},
			{"r", "Refresh"},
		}),
		m.renderSection("Ride Details", []keyHelp{
			{"j / k", "Scroll"},
			{"esc", "Back to the list"},
		}),
		m.renderSection("Sync Screen", []keyHelp{
			{"s / enter", "Start sync"},
		}),
		m.renderMetricsHelp(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	lines := []string{"", sectionStyle.Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func (m HelpModel) renderMetricsHelp() string {
	lines := []string{"", sectionStyle.Render("Metrics Explained"), ""}

	metrics := []keyHelp{
		{"NP (Normalized Power)", "30s rolling power weighted toward hard efforts."},
		{"IF (Intensity Factor)", "NP as a fraction of FTP. 1.0 is a full hour at threshold."},
		{"VI (Variability Index)", "NP over average power. Near 1.0 means a steady ride."},
		{"TSS (Training Stress)", "Duration times IF squared, 100 for an hour at FTP."},
		{"EF (Efficiency Factor)", "Average power per heartbeat. Rising EF means aerobic gains."},
		{"HR Drift", "Change in power per heartbeat from first to second half."},
		{"CTL / ATL / TSB", "42 and 7 day training load averages, and their difference."},
	}

	for _, mt := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(mt.key), "  "+mutedStyle.Render(mt.desc), "")
	}
	return strings.Join(lines, "\n")
}
