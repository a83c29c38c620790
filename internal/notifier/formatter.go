package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"

	"VNScreener/internal/model"
	"VNScreener/internal/report"
	"VNScreener/internal/screener"
)

// Telegram rejects messages longer than 4096 characters. overflowReserve
// leaves room for the "+N more" line.
const (
	maxMessageLen   = 4000
	overflowReserve = 40
)

// FormatScreenReport formats a screen run as a Telegram HTML message.
func FormatScreenReport(res *screener.Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>VNScreener</b> | %s\n", res.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Cơ bản: %d · Kỹ thuật: %d · Tổng: %d\n", res.Fundamental, res.Technical, len(res.Rows)))
	if res.FundamentalErr != nil {
		b.WriteString(fmt.Sprintf("⚠️ fundamental: %s\n", html.EscapeString(res.FundamentalErr.Error())))
	}
	if res.TechnicalErr != nil {
		b.WriteString(fmt.Sprintf("⚠️ technical: %s\n", html.EscapeString(res.TechnicalErr.Error())))
	}
	b.WriteString("\n")

	footer := "\n<i>" + html.EscapeString(report.Disclaimer) + "</i>"
	if len(res.Rows) == 0 {
		b.WriteString("Không có mã nào đạt tiêu chí.\n")
	}
	for i, r := range res.Rows {
		line := formatCandidate(r)
		if b.Len()+len(line)+len(footer)+overflowReserve > maxMessageLen {
			b.WriteString(fmt.Sprintf("… +%d mã khác\n", len(res.Rows)-i))
			break
		}
		b.WriteString(line)
	}
	b.WriteString(footer)
	return b.String()
}

func formatCandidate(r model.EnrichedCandidate) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> (%s", html.EscapeString(r.Symbol), r.Origin))
	if r.Period != nil {
		b.WriteString(" " + r.Period.String())
	}
	b.WriteString(")")
	if m := report.FormatMetrics(r.Metrics); m != "" {
		b.WriteString(" <code>" + html.EscapeString(m) + "</code>")
	}
	if d := r.Dividend; d != nil {
		b.WriteString(fmt.Sprintf("\n   💵 GDKHQ %s", d.ExDate.Format(report.DateLayout)))
		if d.Kind == model.DividendStock {
			b.WriteString(" cổ phiếu " + html.EscapeString(d.Ratio))
		} else {
			b.WriteString(" " + humanize.Commaf(d.CashPerShare.InexactFloat64()) + "đ")
		}
	}
	b.WriteString("\n")
	return b.String()
}

// FormatNews formats recent articles as a Telegram HTML message.
func FormatNews(articles []model.Article) string {
	if len(articles) == 0 {
		return "📰 Chưa có tin – hãy thử lại sau."
	}
	var b strings.Builder
	b.WriteString("📰 <b>Tin kinh tế</b>\n\n")
	for i, a := range articles {
		line := fmt.Sprintf("%d. <a href=\"%s\">%s</a> · %s",
			i+1, html.EscapeString(a.Link), html.EscapeString(a.Title), html.EscapeString(a.Source))
		if a.PublishedAt != nil {
			line += " · " + humanize.Time(*a.PublishedAt)
		}
		line += "\n"
		if b.Len()+len(line)+overflowReserve > maxMessageLen {
			b.WriteString(fmt.Sprintf("… +%d tin khác", len(articles)-i))
			break
		}
		b.WriteString(line)
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Lệnh hỗ trợ:\n/screen - chạy sàng lọc\n/news - tin mới nhất\n/help - trợ giúp"
}
