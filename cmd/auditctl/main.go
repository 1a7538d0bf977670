package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/danmuck/stdiorpc/internal/audit"
	"github.com/danmuck/stdiorpc/internal/logging"
)

var (
	file = kingpin.Arg("file", "Audit log to read").
		Default(audit.DefaultPath).
		String()
	exchangeID = kingpin.Flag("exchange", "Only show records for this exchange id").
			Short('e').
			String()
	recordType = kingpin.Flag("type", "Only show records of this type").
			Enum(audit.TypeRequest, audit.TypeResponse, audit.TypeBadSeq)
)

func main() {
	kingpin.Parse()
	logging.ConfigureRuntime()
	if err := run(*file, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "auditctl: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return printRecords(f, out, filter{exchange: *exchangeID, typ: *recordType})
}

type filter struct {
	exchange string
	typ      string
}

func (f filter) match(r audit.Record) bool {
	if f.exchange != "" && r.ExchangeID != f.exchange {
		return false
	}
	if f.typ != "" && r.Type != f.typ {
		return false
	}
	return true
}

func printRecords(in io.Reader, out io.Writer, f filter) error {
	return audit.Scan(in, func(r audit.Record) error {
		if !f.match(r) {
			return nil
		}
		_, err := fmt.Fprintln(out, describe(r))
		return err
	})
}

func describe(r audit.Record) string {
	ts := r.Time().UTC().Format(time.RFC3339)
	id := r.ExchangeID
	if id == "" {
		id = "-"
	}
	switch r.Type {
	case audit.TypeRequest:
		return fmt.Sprintf("%s %s request  %q symbols=%v", ts, id, r.Request.Expression, r.Request.Symbols)
	case audit.TypeResponse:
		line := fmt.Sprintf("%s %s response %d from %q", ts, id, r.Response.Result, r.Response.Substituted)
		if r.Response.EvalError != "" {
			line += " (" + r.Response.EvalError + ")"
		}
		return line
	case audit.TypeBadSeq:
		line := fmt.Sprintf("%s %s bad_seq  in %s got %s", ts, id, r.BadSeq.Phase, r.BadSeq.Got)
		if r.BadSeq.Symbol != "" {
			line += fmt.Sprintf(" awaiting %q", r.BadSeq.Symbol)
		}
		return line
	default:
		return fmt.Sprintf("%s %s %s", ts, id, r.Type)
	}
}
