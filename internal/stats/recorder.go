// Package stats summarises a run of repeated sequential exchanges.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/dustin/go-humanize"
)

// Histogram bounds, in microseconds: 1µs to 1 hour, 3 significant figures.
const (
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// Recorder accumulates exchange outcomes. It is not safe for concurrent
// use; exchanges are recorded one at a time.
type Recorder struct {
	hist     *hdrhistogram.Histogram
	started  time.Time
	total    int64
	failures int64
	bytes    int64
	statuses map[int]int64
}

// NewRecorder returns an empty Recorder whose wall clock starts now.
func NewRecorder() *Recorder {
	return &Recorder{
		hist:     hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
		started:  time.Now(),
		statuses: make(map[int]int64),
	}
}

// Record adds one exchange. A failed exchange (err != nil) counts toward
// the total and failures; its latency is not recorded.
func (r *Recorder) Record(elapsed time.Duration, status int, size int, err error) {
	r.total++
	if err != nil {
		r.failures++
		return
	}
	r.statuses[status]++
	r.bytes += int64(size)

	micros := elapsed.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}
	r.hist.RecordValue(micros)
}

// Summary is a point-in-time view of the recorded exchanges.
type Summary struct {
	Count    int64         `json:"count" yaml:"count"`
	Failures int64         `json:"failures" yaml:"failures"`
	Bytes    int64         `json:"bytes" yaml:"bytes"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Min      time.Duration `json:"min" yaml:"min"`
	Mean     time.Duration `json:"mean" yaml:"mean"`
	P50      time.Duration `json:"p50" yaml:"p50"`
	P90      time.Duration `json:"p90" yaml:"p90"`
	P99      time.Duration `json:"p99" yaml:"p99"`
	Max      time.Duration `json:"max" yaml:"max"`
	Statuses map[int]int64 `json:"statuses" yaml:"statuses"`
}

// Summary returns the current summary.
func (r *Recorder) Summary() Summary {
	micro := func(v int64) time.Duration {
		return time.Duration(v) * time.Microsecond
	}
	s := Summary{
		Count:    r.total,
		Failures: r.failures,
		Bytes:    r.bytes,
		Duration: time.Since(r.started),
		Statuses: make(map[int]int64, len(r.statuses)),
	}
	for code, n := range r.statuses {
		s.Statuses[code] = n
	}
	if r.hist.TotalCount() > 0 {
		s.Min = micro(r.hist.Min())
		s.Mean = micro(int64(r.hist.Mean()))
		s.P50 = micro(r.hist.ValueAtQuantile(50))
		s.P90 = micro(r.hist.ValueAtQuantile(90))
		s.P99 = micro(r.hist.ValueAtQuantile(99))
		s.Max = micro(r.hist.Max())
	}
	return s
}

// Succeeded returns the number of exchanges that completed.
func (s Summary) Succeeded() int64 {
	return s.Count - s.Failures
}

// String renders the summary as a short multi-line report.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Exchanges: %d (%d failed) in %s, %s received\n",
		s.Count, s.Failures, s.Duration.Round(time.Millisecond), humanize.Bytes(uint64(s.Bytes)))
	fmt.Fprintf(&b, "Latency:   min %s  p50 %s  p90 %s  p99 %s  max %s\n",
		s.Min, s.P50, s.P90, s.P99, s.Max)

	codes := make([]int, 0, len(s.Statuses))
	for code := range s.Statuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%d x%s", code, humanize.Comma(s.Statuses[code])))
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, "Statuses:  %s\n", strings.Join(parts, ", "))
	}
	return b.String()
}
