package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/seaguardian/seaguardian/internal/model"
	"github.com/seaguardian/seaguardian/internal/provider"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const (
	fetchTimeout   = 10 * time.Second
	actionTimeout  = 10 * time.Second
	noticeDuration = 4 * time.Second
)

// Options configures the dashboard.
type Options struct {
	UpdateInterval time.Duration
	VesselID       string
	GeofenceKm     int
	WeatherAlerts  bool
	SOSTestMode    bool
	Logger         *zap.Logger
}

// Router is the root model. It owns the active tab and the latest snapshot
// and delegates all domain data and mutations to the state provider.
type Router struct {
	provider model.StateProvider
	opts     Options
	log      *zap.Logger

	activeTab     Tab
	snapshot      model.Snapshot
	fetchInFlight bool
	refetch       bool

	nav       *Navigation
	liveMap   *LiveMap
	alerts    *AlertsPanel
	catches   *CatchLog
	analytics *Analytics
	comms     *Comms
	settings  *Settings

	keys     KeyMap
	help     help.Model
	showHelp bool

	notice        string
	noticeIsError bool
	noticeSeq     int

	width  int
	height int
}

// NewRouter returns the dashboard with the map pane selected. Until the first
// snapshot arrives the dashboard assumes it is online.
func NewRouter(p model.StateProvider, opts Options) *Router {
	if opts.UpdateInterval <= 0 {
		opts.UpdateInterval = model.DefaultUpdateInterval
	}
	if opts.VesselID == "" {
		opts.VesselID = model.DefaultVesselID
	}
	if opts.GeofenceKm <= 0 {
		opts.GeofenceKm = model.DefaultGeofenceKm
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	keys := DefaultKeyMap()
	r := &Router{
		provider:  p,
		opts:      opts,
		log:       opts.Logger,
		activeTab: TabMap,
		snapshot:  model.Snapshot{IsOnline: true},
		keys:      keys,
		help:      help.New(),
		width:     100,
		height:    30,
	}
	r.nav = NewNavigation(keys, r.setActiveTab)
	r.liveMap = NewLiveMap(keys, opts.VesselID, opts.SOSTestMode, r.triggerSOSCmd)
	r.alerts = NewAlertsPanel(keys, r.acknowledgeAlertCmd)
	r.catches = NewCatchLog(keys, opts.VesselID, r.addCatchCmd)
	r.analytics = NewAnalytics()
	r.comms = NewComms()
	r.settings = NewSettings(keys, SettingsValues{
		UpdateInterval: opts.UpdateInterval,
		GeofenceKm:     opts.GeofenceKm,
		WeatherAlerts:  opts.WeatherAlerts,
		SOSTestMode:    opts.SOSTestMode,
	})
	return r
}

// ActiveAlertCount returns the number of unacknowledged alerts.
func ActiveAlertCount(alerts []model.Alert) int {
	n := 0
	for _, a := range alerts {
		if !a.Acknowledged {
			n++
		}
	}
	return n
}

// ActiveTab returns the selected tab.
func (r *Router) ActiveTab() Tab { return r.activeTab }

// setActiveTab is the navigation callback. Any value is accepted.
func (r *Router) setActiveTab(t Tab) {
	r.activeTab = t
}

func (r *Router) activePane() Pane {
	switch r.activeTab {
	case TabMap:
		return r.liveMap
	case TabAlerts:
		return r.alerts
	case TabCatches:
		return r.catches
	case TabAnalytics:
		return r.analytics
	case TabComms:
		return r.comms
	case TabSettings:
		return r.settings
	}
	return nil
}

// renderContent renders the active pane. An unknown tab renders nothing.
func (r *Router) renderContent(width, height int) string {
	switch r.activeTab {
	case TabMap:
		return r.liveMap.View(width, height)
	case TabAlerts:
		return r.alerts.View(width, height)
	case TabCatches:
		return r.catches.View(width, height)
	case TabAnalytics:
		return r.analytics.View(width, height)
	case TabComms:
		return r.comms.View(width, height)
	case TabSettings:
		return r.settings.View(width, height)
	default:
		return ""
	}
}

// connectivity returns the provider's sync status when it tracks one.
func (r *Router) connectivity() (provider.Status, bool) {
	s, ok := r.provider.(interface{ Status() provider.Status })
	if !ok {
		return provider.Status{}, false
	}
	return s.Status(), true
}

func (r *Router) applySnapshot(snap model.Snapshot) {
	r.snapshot = snap
	r.liveMap.SetData(snap.Vessels, snap.Alerts)
	r.alerts.SetAlerts(snap.Alerts)
	r.catches.SetData(snap.Catches, snap.Vessels)
	r.analytics.SetCatches(snap.Catches)
}

func (r *Router) Init() tea.Cmd {
	r.fetchInFlight = true
	return tea.Batch(r.fetchSnapshotCmd(), tickCmd(r.opts.UpdateInterval))
}

func (r *Router) fetchSnapshotCmd() tea.Cmd {
	p := r.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		snap, err := p.Snapshot(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

// requestFetch starts a fetch unless one is running, in which case another
// fetch follows it.
func (r *Router) requestFetch() tea.Cmd {
	if r.fetchInFlight {
		r.refetch = true
		return nil
	}
	r.fetchInFlight = true
	return r.fetchSnapshotCmd()
}

func (r *Router) triggerSOSCmd(vesselID string) tea.Cmd {
	p := r.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		alert, err := p.TriggerSOS(ctx, vesselID)
		if err != nil {
			return actionResultMsg{action: "sos", err: err}
		}
		notice := fmt.Sprintf("SOS raised for %s", vesselID)
		if alert.ID < 0 {
			notice += " (queued until online)"
		}
		return actionResultMsg{action: "sos", notice: notice}
	}
}

func (r *Router) acknowledgeAlertCmd(alertID int64) tea.Cmd {
	p := r.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if err := p.AcknowledgeAlert(ctx, alertID); err != nil {
			return actionResultMsg{action: "acknowledge", err: err}
		}
		return actionResultMsg{action: "acknowledge", notice: fmt.Sprintf("Alert %d acknowledged", alertID)}
	}
}

func (r *Router) addCatchCmd(rec model.CatchRecord) tea.Cmd {
	p := r.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		saved, err := p.AddCatch(ctx, rec)
		if err != nil {
			return actionResultMsg{action: "catch", err: err}
		}
		return actionResultMsg{action: "catch", notice: fmt.Sprintf("Logged %d × %s (%.1f kg)", saved.Quantity, saved.Species, saved.WeightKg)}
	}
}

func (r *Router) setNotice(text string, isError bool) tea.Cmd {
	r.noticeSeq++
	r.notice = text
	r.noticeIsError = isError
	seq := r.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

func (r *Router) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		r.help.Width = msg.Width
		return r, nil

	case tea.KeyMsg:
		return r, r.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.X < sidebarWidth {
			r.nav.HandleClick(msg.Y)
		}
		return r, nil

	case tickMsg:
		next := tickCmd(r.opts.UpdateInterval)
		if r.fetchInFlight {
			return r, next
		}
		r.fetchInFlight = true
		return r, tea.Batch(r.fetchSnapshotCmd(), next)

	case snapshotMsg:
		r.fetchInFlight = false
		var cmds []tea.Cmd
		if msg.err != nil {
			r.log.Warn("snapshot fetch failed", zap.Error(msg.err))
			cmds = append(cmds, r.setNotice("Sync failed: "+msg.err.Error(), true))
		} else {
			r.applySnapshot(msg.snap)
		}
		if r.refetch {
			r.refetch = false
			cmds = append(cmds, r.requestFetch())
		}
		return r, tea.Batch(cmds...)

	case actionResultMsg:
		if msg.err != nil {
			r.log.Warn("action failed", zap.String("action", msg.action), zap.Error(msg.err))
			return r, tea.Batch(r.setNotice(fmt.Sprintf("%s failed: %v", msg.action, msg.err), true), r.requestFetch())
		}
		cmd := r.setNotice(msg.notice, false)
		if msg.action == "" {
			return r, cmd
		}
		return r, tea.Batch(cmd, r.requestFetch())

	case clearNoticeMsg:
		if msg.seq == r.noticeSeq {
			r.notice = ""
			r.noticeIsError = false
		}
		return r, nil
	}
	return r, nil
}

func (r *Router) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, r.keys.ForceQuit) {
		return tea.Quit
	}

	pane := r.activePane()
	if c, ok := pane.(InputCapturer); ok && c.Capturing() {
		return pane.Update(msg)
	}

	if r.showHelp {
		if key.Matches(msg, r.keys.Help, r.keys.Escape, r.keys.Quit) {
			r.showHelp = false
		}
		return nil
	}

	switch {
	case key.Matches(msg, r.keys.Quit):
		return tea.Quit
	case key.Matches(msg, r.keys.Help):
		r.showHelp = true
		return nil
	case key.Matches(msg, r.keys.Refresh):
		return r.requestFetch()
	}

	if r.nav.HandleKey(r.activeTab, msg) {
		return nil
	}
	if pane == nil {
		return nil
	}
	return pane.Update(msg)
}

// renderConnectivity renders the status strip and, when offline, the banner.
func (r *Router) renderConnectivity(width int) string {
	bar := renderConnectivityBar(r.snapshot.IsOnline, width)
	if r.snapshot.IsOnline {
		return bar
	}
	return lipgloss.JoinVertical(lipgloss.Left, bar, renderOfflineBanner(width))
}

func (r *Router) View() string {
	statusLine := r.renderStatusLine(r.width)
	bodyHeight := max(r.height-lipgloss.Height(statusLine), 3)

	sidebar := r.nav.View(r.activeTab, ActiveAlertCount(r.snapshot.Alerts), bodyHeight-2)
	mainWidth := max(r.width-lipgloss.Width(sidebar), 10)

	top := r.renderConnectivity(mainWidth)
	contentHeight := max(bodyHeight-lipgloss.Height(top), 1)

	var content string
	if r.showHelp {
		r.help.ShowAll = true
		content = lipgloss.JoinVertical(lipgloss.Left,
			renderPaneTitle("Keyboard shortcuts"),
			r.help.View(r.keys))
		r.help.ShowAll = false
	} else {
		content = r.renderContent(mainWidth-2, contentHeight)
	}
	content = lipgloss.NewStyle().
		Width(mainWidth).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Padding(0, 1).
		Render(content)

	main := lipgloss.JoinVertical(lipgloss.Left, top, content)
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main),
		statusLine)
}
