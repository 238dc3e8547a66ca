package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/seaguardian/seaguardian/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldSpecies = iota
	fieldWeight
	fieldQuantity
	fieldNotes
	fieldCount
)

var catchFieldLabels = [fieldCount]string{"Species", "Weight (kg)", "Quantity", "Notes"}

// CatchLog shows recorded catches and a form for adding one.
type CatchLog struct {
	keys       KeyMap
	ownVessel  string
	onAddCatch func(rec model.CatchRecord) tea.Cmd

	catches []model.CatchRecord
	vessels []model.Vessel

	formOpen  bool
	inputs    [fieldCount]textinput.Model
	focus     int
	formError string
}

// NewCatchLog returns the catch log pane. New records are attributed to ownVessel.
func NewCatchLog(keys KeyMap, ownVessel string, onAddCatch func(rec model.CatchRecord) tea.Cmd) *CatchLog {
	p := &CatchLog{keys: keys, ownVessel: ownVessel, onAddCatch: onAddCatch}
	placeholders := [fieldCount]string{"e.g. Atlantic Cod", "e.g. 12.5", "e.g. 3", "optional"}
	for i := range p.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 120
		in.Prompt = ""
		p.inputs[i] = in
	}
	p.inputs[fieldWeight].CharLimit = 12
	p.inputs[fieldQuantity].CharLimit = 6
	return p
}

func (p *CatchLog) Title() string { return "Catch Log" }

// SetData replaces the catches listed and the vessels used to position new records.
func (p *CatchLog) SetData(catches []model.CatchRecord, vessels []model.Vessel) {
	p.catches = catches
	p.vessels = vessels
}

// Capturing reports whether the add form is open.
func (p *CatchLog) Capturing() bool { return p.formOpen }

func (p *CatchLog) openForm() tea.Cmd {
	p.formOpen = true
	p.formError = ""
	for i := range p.inputs {
		p.inputs[i].SetValue("")
		p.inputs[i].Blur()
	}
	p.focus = fieldSpecies
	return p.inputs[p.focus].Focus()
}

func (p *CatchLog) closeForm() {
	p.formOpen = false
	p.formError = ""
	p.inputs[p.focus].Blur()
}

func (p *CatchLog) moveFocus(delta int) tea.Cmd {
	p.inputs[p.focus].Blur()
	p.focus = (p.focus + delta + fieldCount) % fieldCount
	return p.inputs[p.focus].Focus()
}

func (p *CatchLog) Update(msg tea.KeyMsg) tea.Cmd {
	if !p.formOpen {
		if key.Matches(msg, p.keys.NewCatch) {
			return p.openForm()
		}
		return nil
	}

	switch {
	case key.Matches(msg, p.keys.Escape):
		p.closeForm()
		return nil
	case key.Matches(msg, p.keys.Enter):
		if p.focus < fieldNotes {
			return p.moveFocus(1)
		}
		return p.submit()
	case key.Matches(msg, p.keys.NextField):
		return p.moveFocus(1)
	case key.Matches(msg, p.keys.PrevField):
		return p.moveFocus(-1)
	}

	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return cmd
}

// submit validates the form. Invalid input keeps the form open with the reason shown.
func (p *CatchLog) submit() tea.Cmd {
	rec, err := p.record()
	if err != nil {
		p.formError = err.Error()
		return nil
	}
	p.closeForm()
	return p.onAddCatch(rec)
}

func (p *CatchLog) record() (model.CatchRecord, error) {
	rec := model.CatchRecord{
		VesselID: p.ownVessel,
		Species:  strings.TrimSpace(p.inputs[fieldSpecies].Value()),
		Notes:    strings.TrimSpace(p.inputs[fieldNotes].Value()),
	}

	if raw := strings.TrimSpace(p.inputs[fieldWeight].Value()); raw != "" {
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return rec, errors.New("weight must be a number")
		}
		rec.WeightKg = w
	}
	if raw := strings.TrimSpace(p.inputs[fieldQuantity].Value()); raw != "" {
		q, err := strconv.Atoi(raw)
		if err != nil {
			return rec, errors.New("quantity must be a whole number")
		}
		rec.Quantity = q
	}

	if err := model.ValidateCatch(rec); err != nil {
		return rec, err
	}
	for _, v := range p.vessels {
		if v.ID == p.ownVessel {
			rec.Lat, rec.Lon = v.Lat, v.Lon
			break
		}
	}
	return rec, nil
}

func (p *CatchLog) View(width, height int) string {
	title := renderPaneTitle(fmt.Sprintf("%s (%d)", p.Title(), len(p.catches)))
	if p.formOpen {
		return lipgloss.JoinVertical(lipgloss.Left, title, p.renderForm(width))
	}

	footer := helpStyle.Render("n: log a new catch")
	if len(p.catches) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, helpStyle.Render("No catches recorded yet."), "", footer)
	}

	listHeight := max(height-lipgloss.Height(title)-3, 1)
	return lipgloss.JoinVertical(lipgloss.Left, title, p.renderTable(width, listHeight), "", footer)
}

func (p *CatchLog) renderTable(width, maxRows int) string {
	sorted := slices.Clone(p.catches)
	slices.SortStableFunc(sorted, func(a, b model.CatchRecord) int {
		return b.CaughtAt.Compare(a.CaughtAt)
	})

	header := fmt.Sprintf("%-12s %-20s %9s %5s  %-10s %s", "Caught", "Species", "Weight", "Qty", "Vessel", "Notes")
	lines := []string{helpStyle.Render(truncate(header, width))}
	for i, c := range sorted {
		if i >= maxRows-1 {
			lines = append(lines, helpStyle.Render(fmt.Sprintf("... %d more", len(sorted)-i)))
			break
		}
		line := fmt.Sprintf("%-12s %-20s %7.1fkg %5d  %-10s %s",
			c.CaughtAt.Local().Format("Jan 02 15:04"), truncate(c.Species, 20), c.WeightKg, c.Quantity,
			truncate(c.VesselID, 10), c.Notes)
		lines = append(lines, truncate(line, width))
	}
	return strings.Join(lines, "\n")
}

func (p *CatchLog) renderForm(width int) string {
	labelStyle := lipgloss.NewStyle().Width(13).Foreground(ColorGray)
	focusedLabel := labelStyle.Foreground(ColorBlue).Bold(true)

	inputWidth := max(min(width-20, 40), 10)
	rows := []string{chartTitleStyle.Render("New catch for " + p.ownVessel), ""}
	for i := range p.inputs {
		p.inputs[i].Width = inputWidth
		label := labelStyle.Render(catchFieldLabels[i])
		if i == p.focus {
			label = focusedLabel.Render(catchFieldLabels[i])
		}
		rows = append(rows, label+" "+p.inputs[i].View())
	}
	rows = append(rows, "")
	if p.formError != "" {
		rows = append(rows, errorStyle.Render("✗ "+p.formError))
	}
	rows = append(rows, helpStyle.Render("tab/↑↓: move • enter: next/save • esc: cancel"))
	return sectionStyle.Render(strings.Join(rows, "\n"))
}
