package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"VNScreener/internal/model"
	"VNScreener/internal/screener"
	"VNScreener/internal/store"
)

// Disclaimer is printed under every candidate table.
const Disclaimer = "Gợi ý chỉ nhằm tham khảo, KHÔNG phải khuyến nghị đầu tư. (For reference only, not investment advice.)"

// DateLayout is used for every date shown to the user.
const DateLayout = "2006-01-02"

// WriteResult renders a screen run: screen errors, the candidate table and
// the disclaimer.
func WriteResult(w io.Writer, res *screener.Result) {
	fmt.Fprintf(w, "Run %s at %s (%s)\n", res.RunID, res.StartedAt.Format("2006-01-02 15:04"), res.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Fundamental: %d  Technical: %d  Candidates: %d\n", res.Fundamental, res.Technical, len(res.Rows))
	if res.FundamentalErr != nil {
		fmt.Fprintf(w, "! fundamental screen disabled: %v\n", res.FundamentalErr)
	}
	if res.TechnicalErr != nil {
		fmt.Fprintf(w, "! technical screen disabled: %v\n", res.TechnicalErr)
	}
	fmt.Fprintln(w)
	WriteCandidates(w, res.Rows)
	fmt.Fprintln(w)
	fmt.Fprintln(w, Disclaimer)
}

// WriteCandidates renders the enriched candidate table.
func WriteCandidates(w io.Writer, rows []model.EnrichedCandidate) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No candidates.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Symbol", "Origin", "Period", "Metrics", "Ex-date", "Cash/share", "Yield"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range rows {
		table.Append(candidateRow(r))
	}
	table.Render()
}

func candidateRow(r model.EnrichedCandidate) []string {
	period := ""
	if r.Period != nil {
		period = r.Period.String()
	}
	exDate, cash, yield := "", "", ""
	if d := r.Dividend; d != nil {
		exDate = d.ExDate.Format(DateLayout)
		switch d.Kind {
		case model.DividendStock:
			cash = d.Ratio
		default:
			cash = humanize.Commaf(d.CashPerShare.InexactFloat64())
		}
		if d.Yield != nil {
			yield = fmt.Sprintf("%.2f%%", *d.Yield)
		}
	}
	return []string{r.Symbol, string(r.Origin), period, FormatMetrics(r.Metrics), exDate, cash, yield}
}

// FormatMetrics renders metrics as "key=value" pairs in key order.
func FormatMetrics(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+FormatNumber(m[k]))
	}
	return strings.Join(parts, " ")
}

// FormatNumber uses thousands separators for large values and rounds small
// ones to two decimals.
func FormatNumber(v float64) string {
	if v >= 1000 || v <= -1000 {
		return humanize.CommafWithDigits(math.Round(v), 0)
	}
	return humanize.CommafWithDigits(math.Round(v*100)/100, 2)
}

// WriteNews renders articles newest first as a numbered list.
func WriteNews(w io.Writer, articles []model.Article) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No news yet. Run ingest and try again.")
		return
	}
	for i, a := range articles {
		fmt.Fprintf(w, "%2d. %s\n", i+1, a.Title)
		line := "    " + a.Source
		if a.PublishedAt != nil {
			line += " · " + a.PublishedAt.Format("2006-01-02 15:04") + " (" + humanize.Time(*a.PublishedAt) + ")"
		}
		fmt.Fprintln(w, line)
		if a.Summary != "" {
			fmt.Fprintf(w, "    %s\n", a.Summary)
		}
		fmt.Fprintf(w, "    %s\n", a.Link)
	}
}

// WriteRuns renders stored screen runs newest first. A screen that failed
// shows its error in place of the count.
func WriteRuns(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No screen runs recorded.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Run", "Started", "Duration", "Fundamental", "Technical", "Rows"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04") + " (" + humanize.Time(r.Timestamp) + ")",
			r.Duration.Round(time.Millisecond).String(),
			screenCount(r.FundamentalCount, r.FundamentalError),
			screenCount(r.TechnicalCount, r.TechnicalError),
			humanize.Comma(int64(r.RowCount)),
		})
	}
	table.Render()
}

func screenCount(n int, errMsg string) string {
	if errMsg != "" {
		return "error: " + errMsg
	}
	return humanize.Comma(int64(n))
}
