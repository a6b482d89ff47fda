package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"ridedash/internal/service"
)

// recentRowsShown caps the recent ride table on the fitness screen
const recentRowsShown = 5

// FitnessModel is the training load overview screen
type FitnessModel struct {
	queryService *service.QueryService
	units        Units
	data         *service.FitnessData
	loading      bool
	err          error
}

// NewFitnessModel creates a new fitness model
func NewFitnessModel(qs *service.QueryService, units Units) FitnessModel {
	return FitnessModel{
		queryService: qs,
		units:        units,
		loading:      true,
	}
}

// Init loads the fitness data
func (m FitnessModel) Init() tea.Cmd {
	return m.loadData
}

type fitnessDataMsg struct {
	data *service.FitnessData
	err  error
}

func (m FitnessModel) loadData() tea.Msg {
	data, err := m.queryService.Fitness()
	return fitnessDataMsg{data: data, err: err}
}

// Update handles messages
func (m FitnessModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fitnessDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the fitness screen
func (m FitnessModel) View() string {
	if m.loading {
		return "\n  Loading fitness..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.data == nil || len(m.data.RecentRides) == 0 {
		return "\n  No rides yet. Press 's' to sync with Strava."
	}

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderLoadCard(), "  ", m.renderWeekCard())
	sections := []string{topRow}

	if len(m.data.Trend) >= minChartLen {
		sections = append(sections, m.renderTrendChart())
	}
	sections = append(sections,
		m.renderWeeklyTSS(),
		m.renderRecentRides(),
		statusStyle.Render("Press 'r' to refresh, 's' to sync, '2' for the ride list"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m FitnessModel) renderLoadCard() string {
	c := m.data.Current
	lines := []string{
		cardTitleStyle.Render("Training Load"),
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.0f", c.CTL)),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.0f", c.ATL)),
		RenderMetric("Form (TSB)", formStyle(c.TSB).Render(fmt.Sprintf("%+.0f", c.TSB))),
		RenderMetric("Ramp (CTL/wk)", fmt.Sprintf("%+.1f", c.RampRate)),
		"",
		mutedStyle.Render(m.data.FormDescription),
	}
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m FitnessModel) renderWeekCard() string {
	lines := []string{
		cardTitleStyle.Render("This Week"),
		RenderMetric("Rides", fmt.Sprintf("%d", m.data.WeekRideCount)),
		RenderMetric("Distance", m.units.FormatDistance(m.data.WeekDistance)),
		RenderMetric("Time", service.FormatDuration(m.data.WeekTime)),
		RenderMetric("TSS", fmt.Sprintf("%.0f", m.data.WeekTSS)),
	}
	return cardStyle.Width(34).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m FitnessModel) renderTrendChart() string {
	trend := m.data.Trend
	ctl := make([]float64, len(trend))
	atl := make([]float64, len(trend))
	for i, t := range trend {
		ctl[i] = t.CTL
		atl[i] = t.ATL
	}

	graph := asciigraph.PlotMany([][]float64{ctl, atl},
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.SeriesLegends("CTL", "ATL"),
	)

	title := cardTitleStyle.Render(fmt.Sprintf("Fitness vs Fatigue - last %d days", len(trend)))
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m FitnessModel) renderWeeklyTSS() string {
	title := cardTitleStyle.Render("Weekly TSS")
	tss := m.data.WeeklyTSS
	if len(tss) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No data"))
	}

	peak := 0.0
	for _, v := range tss {
		peak = max(peak, v)
	}

	var rows []string
	for i, v := range tss {
		pct := 0.0
		if peak > 0 {
			pct = v / peak * 100
		}
		rows = append(rows, fmt.Sprintf("%-7s %s %.0f",
			m.data.WeeklyLabels[i],
			RenderBar(pct, zoneBarWidth, primaryColor),
			v,
		))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, rows...)...))
}

func (m FitnessModel) renderRecentRides() string {
	title := cardTitleStyle.Render("Recent Rides")

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-22s  %9s  %5s  %4s",
		"Date", "Name", "Distance", "NP", "TSS"))
	rows := []string{title, header}

	for i, r := range m.data.RecentRides {
		if i >= recentRowsShown {
			break
		}
		np, tss := "-", "-"
		if r.Metrics != nil && r.Metrics.NormalizedPower > 0 {
			d := r.Metrics.Rounded()
			np = fmt.Sprintf("%d", d.NormalizedPower)
			tss = fmt.Sprintf("%d", d.TrainingStressScore)
		}
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-10s  %-22s  %9s  %5s  %4s",
			r.StartDateLocal.Format("Jan 02"),
			truncateName(r.Name, 22),
			m.units.FormatDistance(r.Distance),
			np,
			tss,
		)))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// formStyle colors positive form green and deep fatigue red
func formStyle(tsb float64) lipgloss.Style {
	switch {
	case tsb > 0:
		return successStyle
	case tsb < -25:
		return errorStyle
	case tsb < -10:
		return warningStyle
	default:
		return metricValueStyle
	}
}
