package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"PriceCycle/internal/model"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	resistStyle  = cellStyle.Foreground(lipgloss.Color("9"))
	supportStyle = cellStyle.Foreground(lipgloss.Color("10"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// RenderReport draws a single symbol's levels for the terminal.
func RenderReport(r *model.CycleReport) string {
	var b strings.Builder
	status := "previous week"
	if r.Settled {
		status = "settled week"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  reference %s (%s, bar %s)",
		r.Symbol, Price(r.Reference), status, Date(r.BarUsed.Time))))
	b.WriteString("\n")
	if r.HasATR() {
		b.WriteString(fmt.Sprintf("ATR(%d): %s\n", r.ATRPeriod, Price(r.ATR)))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Level", "Step", "Resistance", "Support").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2:
				return resistStyle
			case col == 3:
				return supportStyle
			default:
				return cellStyle
			}
		})
	ls := r.Levels
	for i := range ls.Resistances {
		t.Row(strconv.Itoa(i+1), strconv.FormatFloat(ls.Steps[i], 'f', -1, 64),
			Price(ls.Resistances[i]), Price(ls.Supports[i]))
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

// RenderScan draws a compact summary of a scan, nearest levels only.
func RenderScan(results []model.ScanResult) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Symbol", "Reference", "Bar", "R1", "S1", "ATR").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	var failed []string
	for _, r := range results {
		if r.Err != nil || r.Report == nil {
			failed = append(failed, r.Symbol)
			continue
		}
		rep := r.Report
		t.Row(rep.Symbol, Price(rep.Reference), Date(rep.BarUsed.Time),
			Price(rep.Levels.Resistances[0]), Price(rep.Levels.Supports[0]), ATR(rep.ATR))
	}

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	if len(failed) > 0 {
		b.WriteString(errStyle.Render(fmt.Sprintf("%d failed: %s", len(failed), strings.Join(failed, ", "))))
		b.WriteString("\n")
	}
	return b.String()
}
