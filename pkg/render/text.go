package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorCyan = lipgloss.Color("36")
	colorGray = lipgloss.Color("245")
	colorDim  = lipgloss.Color("240")
)

// WriteText writes the view as terminal tables. Colors are used only when
// w is a terminal that supports them.
func WriteText(w io.Writer, v View) error {
	r := lipgloss.NewRenderer(w)
	titleStyle := r.NewStyle().Bold(true).Foreground(colorCyan)
	dimStyle := r.NewStyle().Foreground(colorDim)

	var b strings.Builder
	b.WriteString(titleStyle.Render(v.Name))
	b.WriteString("\n")
	if meta := headerLine(v); meta != "" {
		b.WriteString(dimStyle.Render(meta))
		b.WriteString("\n")
	}

	section := func(heading string, headers []string, rows [][]string) {
		b.WriteString("\n")
		b.WriteString(r.NewStyle().Bold(true).Render(heading))
		b.WriteString("\n")
		if len(rows) == 0 {
			b.WriteString(dimStyle.Render("  none"))
			b.WriteString("\n")
			return
		}
		b.WriteString(textTable(r, headers, rows))
		b.WriteString("\n")
	}

	fermentables := make([][]string, 0, len(v.Fermentables))
	for _, f := range v.Fermentables {
		fermentables = append(fermentables, []string{f.Name, f.Amount.String()})
	}
	section("Fermentables", []string{"Name", "Amount"}, fermentables)

	hops := make([][]string, 0, len(v.Hops))
	for _, h := range v.Hops {
		hops = append(hops, []string{h.Name, h.Amount.String(), h.Time.String(), h.Use, h.Form, h.Alpha.Number()})
	}
	section("Hops", []string{"Name", "Amount", "Time", "Use", "Form", "Alpha %"}, hops)

	yeasts := make([][]string, 0, len(v.Yeasts))
	for _, y := range v.Yeasts {
		yeasts = append(yeasts, []string{y.Name, y.Laboratory, y.Attenuation.String(), y.TemperatureRange()})
	}
	section("Yeast", []string{"Name", "Lab", "Attenuation", "Temperature"}, yeasts)

	_, err := io.WriteString(w, b.String())
	return err
}

func headerLine(v View) string {
	var parts []string
	if v.Type != "" {
		parts = append(parts, v.Type)
	}
	if v.Brewer != "" {
		parts = append(parts, "by "+v.Brewer)
	}
	if v.BatchSize != nil {
		parts = append(parts, v.BatchSize.String())
	}
	if v.BoilTime != nil {
		parts = append(parts, v.BoilTime.String()+" boil")
	}
	return strings.Join(parts, " · ")
}

func textTable(r *lipgloss.Renderer, headers []string, rows [][]string) string {
	headerStyle := r.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := r.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

func writeNoRecipeText(w io.Writer, reason string) error {
	_, err := fmt.Fprintf(w, "No recipe to show: %s.\n", reason)
	return err
}
