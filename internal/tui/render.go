package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/marketdash/internal/dashboard"
	"github.com/rshade/marketdash/internal/market"
)

// Fixed dashboard copy.
const (
	AppTitle           = "Nasdaq Market Analyzer"
	DashboardTitle     = "Nasdaq Market Analysis"
	AnalysisTitle      = "Market Analysis"
	StocksTitle        = "Nasdaq Top 10 Stocks"
	RefreshLabel       = "Refresh Data"
	NoAnalysisText     = "No analysis available"
	NoStocksText       = "No stock data available"
	refreshFailedLabel = "Last refresh failed: "
	loadingFallback    = "..."
)

// RenderOptions controls RenderDashboard.
type RenderOptions struct {
	// Width is the available terminal width; zero means 80.
	Width int
	// Plain disables all styling.
	Plain bool
	// Markdown renders the analysis summary through glamour. Ignored when
	// Plain is set.
	Markdown bool
	// Location is used for the analysis timestamp; nil means time.Local.
	Location *time.Location
	// Now anchors the relative age of the timestamp; zero omits it.
	Now time.Time
	// Spinner is the current spinner frame shown while loading.
	Spinner string
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Plain {
		o.Markdown = false
	}
	return o
}

// RenderDashboard renders state as a full dashboard. It has no side effects.
func RenderDashboard(state dashboard.ViewState, opts RenderOptions) string {
	opts = opts.withDefaults()
	r := renderer{opts: opts}

	sections := []string{r.header(state)}
	if line := r.errorLine(state); line != "" {
		sections = append(sections, line)
	}
	sections = append(sections,
		r.analysis(state.Analysis),
		r.stocks(state.Stocks),
	)
	return strings.Join(sections, "\n\n")
}

type renderer struct {
	opts RenderOptions
}

func (r renderer) paint(style lipgloss.Style, s string) string {
	if r.opts.Plain {
		return s
	}
	return style.Render(s)
}

func (r renderer) box(title, body string) string {
	content := r.paint(HeaderStyle, title) + "\n" + body
	if r.opts.Plain {
		return title + "\n" + strings.Repeat("-", len(title)) + "\n" + body
	}
	return BoxStyle.Width(r.opts.Width - borderPadding).Render(content)
}

func (r renderer) header(state dashboard.ViewState) string {
	appBar := r.paint(SubtleStyle, AppTitle)
	title := r.paint(TitleStyle, DashboardTitle)
	button := r.refreshControl(state.Loading())

	gap := r.opts.Width - lipgloss.Width(title) - lipgloss.Width(button)
	if gap < 1 {
		gap = 1
	}
	return appBar + "\n" + title + strings.Repeat(" ", gap) + button
}

// refreshControl renders the refresh button. While loading it shows the
// spinner frame and is drawn disabled.
func (r renderer) refreshControl(loading bool) string {
	if !loading {
		if r.opts.Plain {
			return "[" + RefreshLabel + "]"
		}
		return ButtonStyle.Render(RefreshLabel)
	}

	frame := strings.TrimSpace(r.opts.Spinner)
	if frame == "" {
		frame = loadingFallback
	}
	if r.opts.Plain {
		return "[" + frame + "]"
	}
	return ButtonDisabledStyle.Render(frame)
}

func (r renderer) errorLine(state dashboard.ViewState) string {
	if state.Status != dashboard.StatusError || state.Err == nil {
		return ""
	}
	reason := strings.ReplaceAll(state.Err.Error(), "\n", "; ")
	return r.paint(CriticalStyle, refreshFailedLabel+reason)
}

func (r renderer) analysis(a *market.MarketAnalysis) string {
	if a == nil {
		return r.box(AnalysisTitle, r.paint(SubtleStyle, NoAnalysisText))
	}

	inner := r.opts.Width - borderPadding*2
	summary := renderSummary(a.Summary, inner, r.opts.Markdown)
	if strings.TrimSpace(summary) == "" {
		summary = r.paint(SubtleStyle, NoAnalysisText)
	}
	updated := "Last updated: " + FormatTimestamp(a.Timestamp.In(r.opts.Location), r.opts.Now, r.opts.Location)
	return r.box(AnalysisTitle, summary+"\n\n"+r.paint(SubtleStyle, updated))
}

func (r renderer) stocks(quotes []market.StockQuote) string {
	if len(quotes) == 0 {
		return r.box(StocksTitle, r.paint(SubtleStyle, NoStocksText))
	}

	if r.opts.Plain {
		cards := make([]string, 0, len(quotes))
		for _, q := range quotes {
			cards = append(cards, r.card(q))
		}
		return r.box(StocksTitle, strings.Join(cards, "\n\n"))
	}

	inner := r.opts.Width - borderPadding*2
	cols := GridColumns(inner)
	cardWidth := (inner - (cols-1)*cardGap) / cols
	style := CardStyle.Width(cardWidth - borderPadding)
	spacer := strings.Repeat(" ", cardGap)

	rows := make([]string, 0, (len(quotes)+cols-1)/cols)
	for start := 0; start < len(quotes); start += cols {
		end := min(start+cols, len(quotes))
		row := make([]string, 0, 2*(end-start))
		for i, q := range quotes[start:end] {
			if i > 0 {
				row = append(row, spacer)
			}
			row = append(row, style.Render(r.card(q)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return r.box(StocksTitle, lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (r renderer) card(q market.StockQuote) string {
	change := r.paint(ChangeStyle(q.ChangePercent), FormatChange(q.ChangePercent)+"%")
	return strings.Join([]string{
		r.paint(ValueStyle.Bold(true), q.Symbol),
		r.paint(LabelStyle, "Previous Close: ") + "$" + FormatPrice(q.PreviousClose),
		r.paint(LabelStyle, "Current Price: ") + "$" + FormatPrice(q.CurrentPrice),
		r.paint(LabelStyle, "Change: ") + change,
	}, "\n")
}

// GridColumns returns how many stock cards fit side by side in width: one on
// narrow terminals, up to three on wide ones.
func GridColumns(width int) int {
	const maxColumns = 3
	cols := (width + cardGap) / (minCardWidth + cardGap)
	return max(1, min(cols, maxColumns))
}
