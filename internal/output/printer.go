package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bft-labs/wow/internal/domain"
	"github.com/bft-labs/wow/internal/history"
)

// Printer writes styled output to w. Colors are dropped when w is not a terminal.
type Printer struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	theme    Theme
	styles   Styles
}

// NewPrinter creates a printer using DefaultTheme.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:        w,
		renderer: r,
		theme:    DefaultTheme,
		styles:   DefaultTheme.Styles(r),
	}
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.styles.Success.Render(fmt.Sprintf(format, args...)))
}

// Warn prints a non-fatal problem.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.styles.Warning.Render(fmt.Sprintf(format, args...)))
}

// Error prints a failure message.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.w, p.styles.Danger.Render(fmt.Sprintf(format, args...)))
}

// Config prints the current source and interval, as shown under help.
func (p *Printer) Config(st domain.State) {
	fmt.Fprintln(p.w, p.styles.Heading.Render("current config"))
	p.row("image source", st.Source.Label())
	p.row("update frequency", "every "+FormatHours(st.IntervalHours())+" hours")
}

// Status prints the full workspace state.
func (p *Printer) Status(st domain.State, workspace string) {
	fmt.Fprintln(p.w, p.styles.Heading.Render("wow status"))
	p.row("workspace", workspace)
	p.row("image source", fmt.Sprintf("%s (%d)", st.Source.Label(), st.Source))
	p.row("update frequency", "every "+FormatHours(st.IntervalHours())+" hours")
	p.row("last update", formatTime(st.LastUpdateAt))
	if !st.LastUpdateAt.IsZero() && st.LastUpdateAt.Unix() != 0 {
		p.row("next update", formatTime(st.LastUpdateAt.Add(st.Interval)))
	}
	p.row("running", strconv.FormatBool(st.Running))
	p.row("stop requested", strconv.FormatBool(st.StopRequested))
	current := st.CurrentImagePath
	if current == "" {
		current = "(none)"
	}
	p.row("current image", current)
}

// History prints update attempts, newest first.
func (p *Printer) History(entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, p.styles.Muted.Render("no updates recorded"))
		return
	}
	for _, e := range entries {
		outcome := e.Outcome
		if outcome == "success" {
			outcome = p.styles.Success.Render(outcome)
		} else {
			outcome = p.styles.Warning.Render(outcome)
		}
		line := fmt.Sprintf("%s  %s  %s",
			p.styles.Muted.Render(e.StartedAt.Local().Format("2006-01-02 15:04:05")),
			outcome,
			p.styles.Value.Render(e.Duration.Round(time.Millisecond).String()),
		)
		switch {
		case e.ImagePath != "":
			line += "  " + e.ImagePath
		case e.Error != "":
			line += "  " + e.Error
		}
		fmt.Fprintln(p.w, line)
	}
}

// Tip prints a thank-you note in a color picked by now from the tip palette.
func (p *Printer) Tip(now time.Time) {
	palette := p.theme.TipPalette
	color := palette[now.Unix()%int64(len(palette))]
	style := p.renderer.NewStyle().
		Foreground(lipgloss.Color(color)).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Padding(0, 2)
	fmt.Fprintln(p.w, style.Render("thanks for using wow!\nenjoy the view."))
}

func (p *Printer) row(label, value string) {
	fmt.Fprintf(p.w, "  %s %s\n",
		p.styles.Label.Render(label+":"),
		p.styles.Value.Render(value),
	)
}

// FormatHours renders hours without trailing zeros: 12, 2.5, 0.25.
func FormatHours(h float64) string {
	s := strconv.FormatFloat(h, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func formatTime(t time.Time) string {
	if t.Unix() == 0 {
		return "never"
	}
	return t.Local().Format(time.RFC3339)
}
