package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ridedash/internal/service"
	"ridedash/internal/store"
)

// RidesModel is the ride list screen model
type RidesModel struct {
	queryService *service.QueryService
	units        Units
	rides        []store.RideWithMetrics
	cursor       int
	offset       int
	total        int
	pageSize     int
	loading      bool
	err          error
}

// NewRidesModel creates a new ride list model
func NewRidesModel(qs *service.QueryService, units Units) RidesModel {
	return RidesModel{
		queryService: qs,
		units:        units,
		pageSize:     15,
		loading:      true,
	}
}

// Init initializes the ride list
func (m RidesModel) Init() tea.Cmd {
	return m.loadPage
}

type ridesLoadedMsg struct {
	rides []store.RideWithMetrics
	total int
	err   error
}

// OpenRideDetailMsg asks the app to show one ride
type OpenRideDetailMsg struct {
	RideID int64
}

func (m RidesModel) loadPage() tea.Msg {
	rides, err := m.queryService.ListRides(m.pageSize, m.offset)
	if err != nil {
		return ridesLoadedMsg{err: err}
	}

	total, err := m.queryService.TotalRides()
	if err != nil {
		return ridesLoadedMsg{err: err}
	}

	return ridesLoadedMsg{rides: rides, total: total}
}

// Update handles messages
func (m RidesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ridesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.rides = msg.rides
		m.total = msg.total
		m.cursor = min(m.cursor, max(len(m.rides)-1, 0))

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				m.offset = max(m.offset-m.pageSize, 0)
				m.cursor = m.pageSize - 1
				m.loading = true
				return m, m.loadPage
			}
		case "down", "j":
			if m.cursor < len(m.rides)-1 {
				m.cursor++
			} else if m.offset+len(m.rides) < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgup":
			if m.offset > 0 {
				m.offset = max(m.offset-m.pageSize, 0)
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "r":
			m.loading = true
			return m, m.loadPage
		case "enter":
			if m.cursor < len(m.rides) {
				id := m.rides[m.cursor].ID
				return m, func() tea.Msg { return OpenRideDetailMsg{RideID: id} }
			}
		}
	}
	return m, nil
}

// View renders the ride list
func (m RidesModel) View() string {
	if m.loading {
		return "\n  Loading rides..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if len(m.rides) == 0 {
		return "\n  No rides found. Press 's' to sync with Strava."
	}

	var sections []string

	title := fmt.Sprintf("Rides (%d-%d of %d)", m.offset+1, m.offset+len(m.rides), m.total)
	sections = append(sections, cardTitleStyle.Render(title))

	header := fmt.Sprintf("  %-10s  %-25s  %9s  %8s  %5s  %5s  %4s",
		"Date", "Name", "Distance", "Time", "NP", "IF", "TSS")
	sections = append(sections, tableHeaderStyle.Render(header))

	for i, r := range m.rides {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		row := cursor + m.renderRow(r)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	help := statusStyle.Render("  enter: ride details  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m RidesModel) renderRow(r store.RideWithMetrics) string {
	np, ifactor, tss := "-", "-", "-"
	if r.Metrics != nil {
		d := r.Metrics.Rounded()
		if d.NormalizedPower > 0 {
			np = fmt.Sprintf("%d", d.NormalizedPower)
			ifactor = fmt.Sprintf("%.2f", d.IntensityFactor)
			tss = fmt.Sprintf("%d", d.TrainingStressScore)
		}
	}

	return fmt.Sprintf("%-10s  %-25s  %9s  %8s  %5s  %5s  %4s",
		r.StartDateLocal.Format("Jan 02"),
		truncateName(r.Name, 25),
		m.units.FormatDistance(r.Distance),
		service.FormatDuration(r.MovingTime),
		np,
		ifactor,
		tss,
	)
}
