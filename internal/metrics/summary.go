// Package metrics summarizes a client session: exchange latency and how many
// queries each exchange needed.
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/codahale/hdrhistogram"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/danmuck/stdiorpc/internal/exchange"
)

const (
	minLatencyMicros = 1
	maxLatencyMicros = int64(time.Minute / time.Microsecond)
)

// Collector accumulates outcomes. It is not safe for concurrent use.
type Collector struct {
	latency  *hdrhistogram.Histogram
	queries  []float64
	complete int
	desync   int
}

func NewCollector() *Collector {
	return &Collector{
		latency: hdrhistogram.New(minLatencyMicros, maxLatencyMicros, 3),
	}
}

// Observe records one finished exchange.
func (c *Collector) Observe(o exchange.Outcome) {
	switch o.Status {
	case exchange.StatusComplete:
		c.complete++
	case exchange.StatusDesync:
		c.desync++
	}
	c.queries = append(c.queries, float64(len(o.Queries)))

	us := o.Elapsed.Microseconds()
	if us < minLatencyMicros {
		us = minLatencyMicros
	}
	if us > maxLatencyMicros {
		us = maxLatencyMicros
	}
	// In range by construction.
	_ = c.latency.RecordValue(us)
}

// Summary is a point-in-time view of the collector.
type Summary struct {
	Exchanges     int
	Complete      int
	Desync        int
	MeanQueries   float64
	MedianQueries float64
	MaxQueries    float64
	LatencyP50    time.Duration
	LatencyP99    time.Duration
	LatencyMax    time.Duration
}

func (c *Collector) Summary() (Summary, error) {
	s := Summary{
		Exchanges: len(c.queries),
		Complete:  c.complete,
		Desync:    c.desync,
	}
	if len(c.queries) == 0 {
		return s, nil
	}

	var err error
	if s.MeanQueries, err = stats.Mean(c.queries); err != nil {
		return s, errors.Wrapf(err, "compute mean queries")
	}
	if s.MedianQueries, err = stats.Median(c.queries); err != nil {
		return s, errors.Wrapf(err, "compute median queries")
	}
	if s.MaxQueries, err = stats.Max(c.queries); err != nil {
		return s, errors.Wrapf(err, "compute max queries")
	}
	s.LatencyP50 = micros(c.latency.ValueAtQuantile(50))
	s.LatencyP99 = micros(c.latency.ValueAtQuantile(99))
	s.LatencyMax = micros(c.latency.Max())
	return s, nil
}

// Print writes s to out as indented JSON.
func (s Summary) Print(out io.Writer) error {
	output := struct {
		Exchanges     int
		Complete      int
		Desync        int
		MeanQueries   float64
		MedianQueries float64
		MaxQueries    float64
		LatencyP50    string
		LatencyP99    string
		LatencyMax    string
	}{
		Exchanges:     s.Exchanges,
		Complete:      s.Complete,
		Desync:        s.Desync,
		MeanQueries:   s.MeanQueries,
		MedianQueries: s.MedianQueries,
		MaxQueries:    s.MaxQueries,
		LatencyP50:    s.LatencyP50.String(),
		LatencyP99:    s.LatencyP99.String(),
		LatencyMax:    s.LatencyMax.String(),
	}
	marshalled, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "marshal summary")
	}
	_, err = fmt.Fprintln(out, string(marshalled))
	return err
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
