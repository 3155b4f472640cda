package notifier

import (
	"fmt"
	"html"
	"strings"

	"PriceCycle/internal/cycle"
	"PriceCycle/internal/export"
	"PriceCycle/internal/model"
)

// FormatLevelsReport formats one symbol's cycle levels as a Telegram HTML message.
func FormatLevelsReport(r *model.CycleReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | weekly price cycle\n\n", html.EscapeString(r.Symbol)))
	status := "previous week, current candle still forming"
	if r.Settled {
		status = "settled week"
	}
	b.WriteString(fmt.Sprintf("Reference close: <b>%s</b> (%s, %s)\n",
		export.Price(r.Reference), export.Date(r.BarUsed.Time), status))
	b.WriteString(fmt.Sprintf("Steps: %s\n", cycle.FormatSteps(r.Levels.Steps)))
	if r.HasATR() {
		b.WriteString(fmt.Sprintf("ATR(%d): %s\n", r.ATRPeriod, export.Price(r.ATR)))
	}

	b.WriteString("\n<pre>")
	b.WriteString(fmt.Sprintf("%-3s %12s %12s\n", "#", "Resistance", "Support"))
	ls := r.Levels
	for i := range ls.Resistances {
		b.WriteString(fmt.Sprintf("%-3d %12s %12s\n", i+1, export.Price(ls.Resistances[i]), export.Price(ls.Supports[i])))
	}
	b.WriteString("</pre>")
	return b.String()
}

// FormatScanSummary formats a scan as one line per symbol with the nearest levels.
func FormatScanSummary(results []model.ScanResult) string {
	var b strings.Builder
	var failed []string
	ok := 0

	b.WriteString("🔎 <b>Weekly cycle scan</b>\n\n<pre>")
	b.WriteString(fmt.Sprintf("%-12s %10s %10s %10s\n", "Symbol", "Ref", "R1", "S1"))
	for _, r := range results {
		if r.Err != nil || r.Report == nil {
			failed = append(failed, r.Symbol)
			continue
		}
		ok++
		rep := r.Report
		b.WriteString(fmt.Sprintf("%-12s %10s %10s %10s\n",
			html.EscapeString(rep.Symbol), export.Price(rep.Reference),
			export.Price(rep.Levels.Resistances[0]), export.Price(rep.Levels.Supports[0])))
	}
	b.WriteString("</pre>\n")
	b.WriteString(fmt.Sprintf("✅ %d ok", ok))
	if len(failed) > 0 {
		b.WriteString(fmt.Sprintf(" | ❌ %d failed: %s", len(failed), html.EscapeString(strings.Join(failed, ", "))))
	}
	return b.String()
}

// FormatPresets lists the available step presets.
func FormatPresets(p cycle.Presets) string {
	var b strings.Builder
	b.WriteString("🧮 <b>Step presets</b>\n\n")
	for _, name := range p.Names() {
		b.WriteString(fmt.Sprintf("• %s: %s\n", name, html.EscapeString(p[name])))
	}
	return b.String()
}

// SplitMessage breaks text into chunks of at most limit bytes on line
// boundaries. A <pre> block cut in two is closed and reopened.
func SplitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	var cur strings.Builder
	inPre := false
	for _, line := range strings.SplitAfter(text, "\n") {
		if cur.Len() > 0 && cur.Len()+len(line)+len("</pre>") > limit {
			chunk := cur.String()
			if inPre {
				chunk += "</pre>"
			}
			chunks = append(chunks, chunk)
			cur.Reset()
			if inPre {
				cur.WriteString("<pre>")
			}
		}
		cur.WriteString(line)
		if strings.Contains(line, "<pre>") {
			inPre = true
		}
		if strings.Contains(line, "</pre>") {
			inPre = false
		}
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
