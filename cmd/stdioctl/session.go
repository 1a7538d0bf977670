package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/danmuck/stdiorpc/internal/exchange"
	"github.com/danmuck/stdiorpc/internal/metrics"
	"github.com/danmuck/stdiorpc/internal/transcript"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// interactive runs one exchange per non-blank input line until in is
// exhausted or an exchange fails with an I/O or framing error.
func interactive(in io.Reader, prompt bool, client *exchange.Client, r *transcript.Renderer, c *metrics.Collector) error {
	br := bufio.NewReader(in)
	for {
		if prompt {
			r.Line("Enter an expression: ")
		}
		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return readErr
		}
		if expr := strings.TrimSpace(line); expr != "" {
			if err := exchangeOne(client, r, c, expr); err != nil {
				return err
			}
		}
		if readErr != nil {
			return nil
		}
	}
}

func evalAll(client *exchange.Client, r *transcript.Renderer, c *metrics.Collector, exprs []string, quiet bool) error {
	for _, expr := range exprs {
		if quiet {
			out, err := client.Exchange(expr)
			if err != nil {
				return err
			}
			c.Observe(out)
			if out.Status == exchange.StatusDesync {
				return fmt.Errorf("%q: server reported bad sequence", expr)
			}
			r.Line("%d", out.Result)
			continue
		}
		if err := exchangeOne(client, r, c, expr); err != nil {
			return err
		}
	}
	return nil
}

func exchangeOne(client *exchange.Client, r *transcript.Renderer, c *metrics.Collector, expr string) error {
	r.Header()
	out, err := client.Exchange(expr)
	if err != nil {
		return err
	}
	c.Observe(out)
	if out.Status == exchange.StatusDesync {
		r.Warn("Bad sequence")
	}
	r.Line("")
	return nil
}
