package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/seaguardian/seaguardian/internal/model"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var speciesPalette = []lipgloss.Color{"39", "#4ADE80", "220", "#FB923C", "201", "45", "#F87171", "141"}

// CatchTotals aggregates the catch log.
type CatchTotals struct {
	Count         int
	TotalWeightKg float64
	AvgWeightKg   float64
	TotalQuantity int
}

// SpeciesWeight is the summed weight for one species.
type SpeciesWeight struct {
	Species  string
	WeightKg float64
	Quantity int
}

// Analytics summarizes the catch log.
type Analytics struct {
	catches []model.CatchRecord
}

// NewAnalytics returns the analytics pane.
func NewAnalytics() *Analytics { return &Analytics{} }

func (p *Analytics) Title() string { return "Analytics" }

// SetCatches stores the catch records exactly as the snapshot carries them.
func (p *Analytics) SetCatches(catches []model.CatchRecord) { p.catches = catches }

// Catches returns the records last given to SetCatches.
func (p *Analytics) Catches() []model.CatchRecord { return p.catches }

func (p *Analytics) Update(tea.KeyMsg) tea.Cmd { return nil }

func summarizeCatches(catches []model.CatchRecord) CatchTotals {
	var t CatchTotals
	for _, c := range catches {
		t.Count++
		t.TotalWeightKg += c.WeightKg
		t.TotalQuantity += c.Quantity
	}
	if t.Count > 0 {
		t.AvgWeightKg = t.TotalWeightKg / float64(t.Count)
	}
	return t
}

// weightBySpecies groups by case-insensitive species name, heaviest first.
func weightBySpecies(catches []model.CatchRecord) []SpeciesWeight {
	idx := make(map[string]int)
	var out []SpeciesWeight
	for _, c := range catches {
		k := strings.ToLower(strings.TrimSpace(c.Species))
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, SpeciesWeight{Species: strings.TrimSpace(c.Species)})
		}
		out[i].WeightKg += c.WeightKg
		out[i].Quantity += c.Quantity
	}
	slices.SortStableFunc(out, func(a, b SpeciesWeight) int {
		if c := cmp.Compare(b.WeightKg, a.WeightKg); c != 0 {
			return c
		}
		return cmp.Compare(a.Species, b.Species)
	})
	return out
}

func (p *Analytics) View(width, height int) string {
	title := renderPaneTitle(p.Title())
	if len(p.catches) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			helpStyle.Render("No catches recorded yet. Press n on the catches pane to log one."))
	}

	totals := summarizeCatches(p.catches)
	stat := func(label, value string) string {
		return sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			helpStyle.Render(label),
			chartTitleStyle.Render(value)))
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Catches", fmt.Sprintf("%d", totals.Count)),
		stat("Total weight", fmt.Sprintf("%.1f kg", totals.TotalWeightKg)),
		stat("Avg weight", fmt.Sprintf("%.1f kg", totals.AvgWeightKg)),
		stat("Fish landed", fmt.Sprintf("%d", totals.TotalQuantity)),
	)

	chartHeight := min(max(height-lipgloss.Height(title)-lipgloss.Height(cards)-4, 4), 12)
	chart := p.renderSpeciesChart(width-4, chartHeight)

	return lipgloss.JoinVertical(lipgloss.Left, title, cards,
		sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			chartTitleStyle.Render("Weight by species"), chart)))
}

func (p *Analytics) renderSpeciesChart(width, chartHeight int) string {
	species := weightBySpecies(p.catches)

	legendWidth := 30
	chartWidth := max(width-legendWidth-2, 12)
	maxBars := max(chartWidth/4, 1)
	if len(species) > maxBars {
		species = species[:maxBars]
	}

	bc := barchart.New(chartWidth, chartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(3),
		barchart.WithNoAxis(),
	)
	legendLines := make([]string, 0, len(species))
	for i, s := range species {
		color := speciesPalette[i%len(speciesPalette)]
		style := lipgloss.NewStyle().Foreground(color).Background(color)
		bc.Push(barchart.BarData{
			Label:  s.Species,
			Values: []barchart.BarValue{{Name: s.Species, Value: s.WeightKg, Style: style}},
		})
		legend := fmt.Sprintf("%-16s %8.1fkg", truncate(s.Species, 16), s.WeightKg)
		legendLines = append(legendLines, lipgloss.NewStyle().Foreground(color).Render(legend))
	}
	bc.Draw()

	chartBlock := lipgloss.NewStyle().Width(chartWidth).Render(bc.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, chartBlock, "  ", strings.Join(legendLines, "\n"))
}
