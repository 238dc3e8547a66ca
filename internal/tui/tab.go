package tui

// Tab identifies one of the dashboard panes.
type Tab string

const (
	TabMap       Tab = "map"
	TabAlerts    Tab = "alerts"
	TabCatches   Tab = "catches"
	TabAnalytics Tab = "analytics"
	TabComms     Tab = "comms"
	TabSettings  Tab = "settings"
)

// Tabs lists the panes in sidebar order.
var Tabs = []Tab{TabMap, TabAlerts, TabCatches, TabAnalytics, TabComms, TabSettings}

// Label is the sidebar text for the tab.
func (t Tab) Label() string {
	switch t {
	case TabMap:
		return "Live Map"
	case TabAlerts:
		return "Alerts"
	case TabCatches:
		return "Catch Log"
	case TabAnalytics:
		return "Analytics"
	case TabComms:
		return "Comms"
	case TabSettings:
		return "Settings"
	}
	return string(t)
}

func tabIndex(t Tab) int {
	for i, tab := range Tabs {
		if tab == t {
			return i
		}
	}
	return -1
}
