// Package transcript draws exchanged messages as a two-column ladder between
// client and server.
package transcript

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/danmuck/stdiorpc/internal/protocol"
	"github.com/danmuck/stdiorpc/internal/symtab"
)

const (
	ladderWidth   = 36
	ladderPadding = 4

	requestWidth  = ladderWidth - 2*ladderPadding - 13
	replyWidth    = ladderWidth - 2*ladderPadding - 16
	responseWidth = ladderWidth - 2*ladderPadding - 18
	queryWidth    = ladderWidth - 2*ladderPadding - 16
	logWidth      = ladderWidth - 2*ladderPadding - 12
	badSeqWidth   = ladderWidth - 2*ladderPadding - 16
)

// Renderer writes ladder lines to out.
type Renderer struct {
	out io.Writer

	title    *color.Color
	symbol   *color.Color
	reqLabel *color.Color
	reqText  *color.Color
	repLabel *color.Color
	repText  *color.Color
	resLabel *color.Color
	resText  *color.Color
	qryLabel *color.Color
	qryText  *color.Color
	warn     *color.Color
}

func NewRenderer(out io.Writer, noColor bool) *Renderer {
	r := &Renderer{
		out:      out,
		title:    color.New(color.Bold, color.FgBlue),
		symbol:   color.New(color.FgCyan),
		reqLabel: color.New(color.Bold, color.FgGreen),
		reqText:  color.New(color.FgGreen),
		repLabel: color.New(color.Bold, color.Italic, color.FgHiYellow),
		repText:  color.New(color.FgYellow),
		resLabel: color.New(color.Bold, color.Italic, color.FgHiGreen),
		resText:  color.New(color.FgGreen),
		qryLabel: color.New(color.Bold, color.FgYellow),
		qryText:  color.New(color.FgYellow),
		warn:     color.New(color.FgRed),
	}
	if noColor {
		for _, c := range []*color.Color{
			r.title, r.symbol, r.reqLabel, r.reqText, r.repLabel, r.repText,
			r.resLabel, r.resText, r.qryLabel, r.qryText, r.warn,
		} {
			c.DisableColor()
		}
	}
	return r
}

// NewStdoutRenderer renders to stdout, translating escape sequences on
// consoles that need it. Color is dropped when stdout is not a terminal.
func NewStdoutRenderer(noColor bool) *Renderer {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		noColor = true
	}
	return NewRenderer(colorable.NewColorableStdout(), noColor)
}

// Pool lists the symbol table, three entries per row.
func (r *Renderer) Pool(t symtab.Table) {
	fmt.Fprintln(r.out, r.title.Sprint("Symbols Pool:"))
	entries := t.Entries()
	for i, e := range entries {
		fmt.Fprintf(r.out, "%s:%4d    ", r.symbol.Sprint(fmt.Sprintf("%-3s", string(e.Symbol))), e.Value)
		if i%3 == 2 {
			fmt.Fprintln(r.out)
		}
	}
	if len(entries)%3 != 0 {
		fmt.Fprintln(r.out)
	}
	fmt.Fprintln(r.out)
}

// Header starts the ladder for one exchange.
func (r *Renderer) Header() {
	fmt.Fprintf(r.out, "\n %s %21s %s \n", "client", "", "server")
}

func (r *Renderer) C2S(m protocol.C2S) {
	switch m.Kind {
	case protocol.KindRequest:
		fmt.Fprintf(r.out, "    |----%s: %s---▶|\n",
			r.reqLabel.Sprint("Req"), r.reqText.Sprint(pad(truncate(m.Expression, requestWidth), requestWidth)))
	case protocol.KindReply:
		fmt.Fprintf(r.out, "    |----%s: %s!---▶|\n",
			r.repLabel.Sprint("Reply"), r.repText.Sprint(pad(fmt.Sprint(m.Value), replyWidth)))
	default:
		fmt.Fprintf(r.out, "    |----%s---▶|\n", m.Kind)
	}
}

func (r *Renderer) S2C(m protocol.S2C) {
	switch m.Kind {
	case protocol.KindResponse:
		fmt.Fprintf(r.out, "    |◀---%s: %s----|\n",
			r.resLabel.Sprint("Response"), r.resText.Sprint(pad(fmt.Sprint(m.Value), responseWidth)))
	case protocol.KindQuery:
		fmt.Fprintf(r.out, "    |◀---%s: %s?----|\n",
			r.qryLabel.Sprint("Query"), r.qryText.Sprint(pad(string(m.Symbol), queryWidth)))
	case protocol.KindLog:
		fmt.Fprintf(r.out, "    |◀---Log: %s!---|\n", pad(truncate(m.Text, logWidth), logWidth))
	case protocol.KindBadSeq:
		fmt.Fprintf(r.out, "    ◀---%s: %s!----\n", r.warn.Sprint("BadSeq"), pad("Bad seq", badSeqWidth))
	default:
		fmt.Fprintf(r.out, "    |◀---%s----|\n", m.Kind)
	}
}

// Line writes a plain line below the ladder.
func (r *Renderer) Line(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Warn writes a highlighted line below the ladder.
func (r *Renderer) Warn(format string, args ...any) {
	fmt.Fprintln(r.out, r.warn.Sprintf(format, args...))
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

func pad(s string, width int) string {
	return fmt.Sprintf("%*s", width, s)
}
