package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"ridedash/internal/analysis"
	"ridedash/internal/service"
)

const (
	chartWidth    = 60
	chartHeight   = 8
	zoneBarWidth  = 30
	detailChrome  = 6 // header, nav and footer lines
	minChartLen   = 3
	elevationRows = 6
)

var (
	powerZoneNames = []string{"Recovery", "Endurance", "Tempo", "Threshold", "VO2max", "Anaerobic"}
	hrZoneNames    = []string{"Recovery", "Endurance", "Tempo", "Threshold", "VO2max"}
)

// RideDetailModel shows the full analysis of one ride
type RideDetailModel struct {
	queryService *service.QueryService
	units        Units
	rideID       int64
	detail       *service.RideDetail
	viewport     viewport.Model
	loading      bool
	err          error
	ready        bool
}

// NewRideDetailModel creates a detail model for the given ride
func NewRideDetailModel(qs *service.QueryService, units Units, rideID int64, width, height int) RideDetailModel {
	m := RideDetailModel{
		queryService: qs,
		units:        units,
		rideID:       rideID,
		loading:      true,
	}
	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-detailChrome)
		m.ready = true
	}
	return m
}

// Init loads the ride
func (m RideDetailModel) Init() tea.Cmd {
	return m.loadDetail
}

type rideDetailLoadedMsg struct {
	detail *service.RideDetail
	err    error
}

func (m RideDetailModel) loadDetail() tea.Msg {
	detail, err := m.queryService.RideDetail(m.rideID)
	return rideDetailLoadedMsg{detail: detail, err: err}
}

// Update handles messages
func (m RideDetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case rideDetailLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.detail = msg.detail
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-detailChrome)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - detailChrome
		}
		if m.detail != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.loadDetail
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail screen
func (m RideDetailModel) View() string {
	if m.loading {
		return "\n  Loading ride..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  esc: back to rides  j/k or arrows: scroll  r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m RideDetailModel) renderContent() string {
	if m.detail == nil {
		return "No data"
	}
	d := m.detail

	sections := []string{m.renderHeader(), m.renderCoachMetrics()}

	if !d.HasStreams {
		sections = append(sections, mutedStyle.Render("No stream data for this ride yet. Sync to download it."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if d.HasPower() {
		sections = append(sections, m.renderChart("Power (W)", d.PowerData, 0))
	}
	if d.HasHeartrate() {
		sections = append(sections, m.renderChart("Heart Rate (bpm)", d.HRData, 0))
	}
	if len(d.SpeedData) >= minChartLen {
		sections = append(sections, m.renderChart("Speed ("+m.units.SpeedLabel()+")", m.units.ConvertSpeedData(d.SpeedData), 1))
	}

	sections = append(sections,
		m.renderZones(fmt.Sprintf("Power Zones (FTP %.0f W)", d.FTP), d.Metrics.PowerZones, powerZoneNames),
		m.renderZones(fmt.Sprintf("Heart Rate Zones (max %.0f bpm)", d.MaxHR), d.Metrics.HRZones, hrZoneNames),
		m.renderElevation(),
	)

	if len(d.PowerCurve) > 0 {
		sections = append(sections, m.renderPeakPower())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m RideDetailModel) renderHeader() string {
	r := m.detail.Ride
	title := cardTitleStyle.Render(r.Name)
	date := mutedStyle.Render(r.StartDateLocal.Format("Monday, January 2, 2006 at 3:04 PM"))

	stats := strings.Join([]string{
		m.units.FormatDistance(r.Distance),
		service.FormatDuration(r.MovingTime),
		m.units.FormatAverageSpeed(r.Distance, r.MovingTime),
		m.units.FormatElevation(r.TotalElevationGain),
	}, "  •  ")
	statsLine := lipgloss.NewStyle().Foreground(textColor).Bold(true).Render(stats)

	return lipgloss.JoinVertical(lipgloss.Left, "", title, date, statsLine, "")
}

func (m RideDetailModel) renderCoachMetrics() string {
	d := m.detail.Display
	avg := m.detail.Metrics

	avgPower := "-"
	if avg.AverageWatts > 0 {
		avgPower = fmt.Sprintf("%.0f", avg.AverageWatts)
	}
	avgHR := "-"
	if avg.AverageHeartrate > 0 {
		avgHR = fmt.Sprintf("%.0f", avg.AverageHeartrate)
	}

	tiles := []string{
		RenderTile("Avg Power", avgPower),
		RenderTile("NP", fmt.Sprintf("%d", d.NormalizedPower)),
		RenderTile("IF", fmt.Sprintf("%.2f", d.IntensityFactor)),
		RenderTile("VI", fmt.Sprintf("%.2f", d.VariabilityIndex)),
		RenderTile("TSS", fmt.Sprintf("%d", d.TrainingStressScore)),
		RenderTile("Avg HR", avgHR),
		RenderTile("EF", fmt.Sprintf("%.2f", d.EfficiencyFactor)),
		RenderTile("HR Drift", fmt.Sprintf("%.1f%%", d.HRDriftPct)),
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tiles[:4]...)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, tiles[4:]...)
	return lipgloss.JoinVertical(lipgloss.Left, sectionStyle.Render("Coach Metrics"), row, row2, "")
}

func (m RideDetailModel) renderChart(title string, data []float64, precision uint) string {
	lines := []string{sectionStyle.Render(title)}

	if len(data) >= minChartLen {
		lines = append(lines, asciigraph.Plot(data,
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
			asciigraph.Precision(precision),
		))
		lines = append(lines, mutedStyle.Render(m.axisLabel()))
	} else {
		lines = append(lines, mutedStyle.Render("  Not enough data"))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// axisLabel spans the first and last minute labels under a chart
func (m RideDetailModel) axisLabel() string {
	labels := m.detail.TimeLabels
	if len(labels) == 0 {
		return ""
	}
	first, last := labels[0], labels[len(labels)-1]
	gap := max(chartWidth-len(first)-len(last), 1)
	return "        " + first + strings.Repeat(" ", gap) + last
}

func (m RideDetailModel) renderZones(title string, dist analysis.Distribution, names []string) string {
	lines := []string{sectionStyle.Render(title)}

	if dist.Empty() {
		lines = append(lines, mutedStyle.Render("  No data"), "")
		return strings.Join(lines, "\n")
	}

	for i, z := range dist {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		color := zoneColors[min(i, len(zoneColors)-1)]
		label := fmt.Sprintf("  %-3s %-10s ", z.Zone, name)
		bar := RenderBar(z.Percent, zoneBarWidth, color)
		pad := strings.Repeat(" ", zoneBarWidth-lipgloss.Width(bar))
		lines = append(lines, fmt.Sprintf("%s%s%s %5.1f%%", label, bar, pad, z.Percent))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m RideDetailModel) renderElevation() string {
	e := m.detail.Elevation
	lines := []string{sectionStyle.Render("Elevation")}

	if !e.Available || len(e.Points) < minChartLen {
		lines = append(lines, mutedStyle.Render("  Elevation profile unavailable"), "")
		return strings.Join(lines, "\n")
	}

	alts := make([]float64, len(e.Points))
	for i, p := range e.Points {
		alts[i] = m.units.Elevation(p.Altitude)
	}
	lines = append(lines,
		asciigraph.Plot(alts, asciigraph.Height(elevationRows), asciigraph.Width(chartWidth), asciigraph.Precision(0)),
		mutedStyle.Render(fmt.Sprintf("  Gain %s  •  Low %s  •  High %s",
			m.units.FormatElevation(e.Gain),
			m.units.FormatElevation(e.Min),
			m.units.FormatElevation(e.Max),
		)),
		"",
	)
	return strings.Join(lines, "\n")
}

func (m RideDetailModel) renderPeakPower() string {
	d := m.detail
	lines := []string{sectionStyle.Render("Peak Power")}

	for _, p := range d.PowerCurve {
		lines = append(lines, "  "+RenderMetric(p.Label(), fmt.Sprintf("%.0f W", p.Watts)))
	}
	if d.FTPEstimate > 0 {
		lines = append(lines, "  "+RenderMetric("FTP estimate", fmt.Sprintf("%.0f W", d.FTPEstimate)))
	}
	lines = append(lines, "  "+RenderMetric("Max power", fmt.Sprintf("%.0f W", d.MaxPower)))

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}
