package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ridedash/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenFitness Screen = iota
	ScreenRides
	ScreenRideDetail
	ScreenSync
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	fitness    FitnessModel
	rides      RidesModel
	detail     RideDetailModel
	syncScreen SyncModel
	help       HelpModel

	queryService *service.QueryService
	syncService  *service.SyncService
	units        Units

	width  int
	height int

	status string
}

// NewApp creates the root model. The sync service may be nil when the app
// runs without Strava access; the sync screen is then disabled.
func NewApp(queryService *service.QueryService, syncService *service.SyncService, units Units) *App {
	a := &App{
		screen:       ScreenFitness,
		queryService: queryService,
		syncService:  syncService,
		units:        units,
		fitness:      NewFitnessModel(queryService, units),
		rides:        NewRidesModel(queryService, units),
		help:         NewHelpModel(),
	}
	if syncService != nil {
		a.syncScreen = NewSyncModel(syncService)
	}
	return a
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.fitness.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		// Navigation is locked while a sync runs
		if a.screen != ScreenSync || !a.syncScreen.Syncing() {
			if cmd, handled := a.navigate(msg.String()); handled {
				return a, cmd
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case OpenRideDetailMsg:
		a.screen = ScreenRideDetail
		a.detail = NewRideDetailModel(a.queryService, a.units, msg.RideID, a.width, a.height)
		return a, a.detail.Init()

	case SyncCompleteMsg:
		// Stale screens reload on next visit
		a.fitness = NewFitnessModel(a.queryService, a.units)
		a.rides = NewRidesModel(a.queryService, a.units)
		a.status = ""
		return a, nil
	}

	return a, a.delegate(msg)
}

// navigate handles global keys; handled is false when the key belongs to the screen
func (a *App) navigate(key string) (cmd tea.Cmd, handled bool) {
	switch key {
	case "q":
		return tea.Quit, true
	case "1":
		a.screen = ScreenFitness
		a.fitness = NewFitnessModel(a.queryService, a.units)
		return a.fitness.Init(), true
	case "2":
		a.screen = ScreenRides
		return a.rides.Init(), true
	case "3", "s":
		if a.screen == ScreenSync {
			return nil, false
		}
		if a.syncService == nil {
			a.status = "Sync is unavailable without Strava credentials"
			return nil, true
		}
		a.screen = ScreenSync
		return a.syncScreen.Init(), true
	case "?":
		if a.screen != ScreenHelp {
			a.prevScreen = a.screen
		}
		a.screen = ScreenHelp
		return nil, true
	case "esc":
		switch a.screen {
		case ScreenHelp:
			a.screen = a.prevScreen
			return nil, true
		case ScreenRideDetail:
			a.screen = ScreenRides
			return nil, true
		}
	}
	return nil, false
}

func (a *App) delegate(msg tea.Msg) tea.Cmd {
	var (
		m   tea.Model
		cmd tea.Cmd
	)
	switch a.screen {
	case ScreenFitness:
		m, cmd = a.fitness.Update(msg)
		a.fitness = m.(FitnessModel)
	case ScreenRides:
		m, cmd = a.rides.Update(msg)
		a.rides = m.(RidesModel)
	case ScreenRideDetail:
		m, cmd = a.detail.Update(msg)
		a.detail = m.(RideDetailModel)
	case ScreenSync:
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}
	return cmd
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenFitness:
		content = a.fitness.View()
	case ScreenRides:
		content = a.rides.View()
	case ScreenRideDetail:
		content = a.detail.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), content, a.renderFooter())
}

func (a *App) renderHeader() string {
	return headerStyle.Render("ridedash - cycling training dashboard")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Fitness", ScreenFitness},
		{"2", "Rides", ScreenRides},
		{"3", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}
		label := "[" + item.key + "] " + item.label
		active := a.screen == item.screen || (item.screen == ScreenRides && a.screen == ScreenRideDetail)
		if active {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}
	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}

// SyncCompleteMsg is sent when sync finishes
type SyncCompleteMsg struct{}
