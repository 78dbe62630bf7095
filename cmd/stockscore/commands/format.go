package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wonny/stockscore/backend/internal/contracts"
	"github.com/wonny/stockscore/backend/internal/scheduler/jobs"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleRule = "═══════════════════════════════════════════════════════════"
	singleRule = "───────────────────────────────────────────────────────────"
)

var breakdownWidths = []int{22, 9, 52}

// printHeader prints a titled block header
func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleRule)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleRule)
}

// printKeyValue prints key-value pairs
func printKeyValue(w io.Writer, key, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// printTableHeader prints a table header and its rule
func printTableHeader(w io.Writer, columns []string, widths []int) {
	printTableRow(w, columns, widths)

	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", total))
}

// printTableRow prints a table row
func printTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		if i < len(values)-1 {
			fmt.Fprintf(w, "%-*s  ", widths[i], val)
		} else {
			fmt.Fprint(w, val)
		}
	}
	fmt.Fprintln(w)
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printBreakdown prints one score section
func printBreakdown(w io.Writer, title string, total, maxScore float64, rows []contracts.ScoreBreakdown) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s  %s / %s\n", title, num(total), num(maxScore))
	printTableHeader(w, []string{"Rule", "Score", "Reason"}, breakdownWidths)
	for _, b := range rows {
		printTableRow(w, []string{b.Name, fmt.Sprintf("%s/%s", num(b.Score), num(b.MaxScore)), b.Reason}, breakdownWidths)
	}
}

// printAnalysis renders an AnalysisResult as tables
func printAnalysis(w io.Writer, r *contracts.AnalysisResult) {
	printHeader(w, fmt.Sprintf("%s  Analysis", r.Symbol))
	printKeyValue(w, "Data", fmt.Sprintf("%s (%s)", r.DataStatus, r.DataSource), 10)
	if r.ParamsHash != "" {
		printKeyValue(w, "Params", shortHash(r.ParamsHash), 10)
	}
	if r.Confidence.MoatScore != nil {
		printKeyValue(w, "Moat", num(*r.Confidence.MoatScore), 10)
	}
	if r.Confidence.RiskScore != nil {
		printKeyValue(w, "Risk", num(*r.Confidence.RiskScore), 10)
	}

	printBreakdown(w, "Confidence", r.Confidence.Total, r.Confidence.MaxPossible, r.Confidence.Breakdown)
	printBreakdown(w, "Dividend", r.Dividend.Total, r.Dividend.MaxPossible, r.Dividend.Breakdown)
	printBreakdown(w, "Value", r.Value.Total, r.Value.MaxPossible, r.Value.Breakdown)

	if r.FairValue != nil {
		fmt.Fprintln(w)
		printFairValue(w, *r.FairValue)
	}
	fmt.Fprintln(w, doubleRule)
}

// printFairValue renders one fair value estimate
func printFairValue(w io.Writer, fv contracts.FairValueEstimate) {
	fmt.Fprintf(w, "Fair Value (%s)\n", fv.Model)
	printKeyValue(w, "Fair", money(fv.FairValue), 10)
	printKeyValue(w, "Price", money(fv.CurrentPrice), 10)
	verdict := "-"
	switch {
	case fv.IsUndervalued:
		verdict = "✅ undervalued"
	case fv.FairValue != nil && fv.CurrentPrice != nil:
		verdict = "above fair value"
	}
	printKeyValue(w, "Verdict", verdict, 10)
	printKeyValue(w, "Basis", fv.Explanation, 10)
}

// printSnapshots renders the watch table
func printSnapshots(w io.Writer, snaps []jobs.Snapshot) {
	widths := []int{8, 6, 6, 6, 10, 10, 12}
	printTableHeader(w, []string{"Symbol", "Conf", "Div", "Value", "Fair", "Price", "Status"}, widths)
	for _, s := range snaps {
		r := s.Result
		fair, price := "-", "-"
		if r.FairValue != nil {
			fair, price = money(r.FairValue.FairValue), money(r.FairValue.CurrentPrice)
		}
		status := string(r.DataStatus)
		if s.Undervalued {
			status = "UNDERVALUED"
		}
		printTableRow(w, []string{
			s.Symbol,
			num(r.Confidence.Total),
			num(r.Dividend.Total),
			num(r.Value.Total),
			fair,
			price,
			status,
		}, widths)
	}
}

// num trims trailing zeros: 3 → "3", 2.5 → "2.5"
func num(v float64) string {
	s := strings.TrimRight(fmt.Sprintf("%.2f", v), "0")
	return strings.TrimSuffix(s, ".")
}

func money(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
