// Package progress reports scan progress the way the teacher's worker
// pool does — a schollz/progressbar/v3 bar shared across workers — plus
// atomic counters and a structured log line every 100 files carrying the
// processed count, error count, rate and elapsed time. Queue depths and
// an ETA are not reported.
package progress

import (
	"sync/atomic"
	"time"

	bar "github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

// Tracker accumulates scan counters and drives both a visual progress bar
// and periodic structured log lines.
type Tracker struct {
	processed int64
	errors    int64
	started   time.Time
	log       *logrus.Entry
	bar       *bar.ProgressBar

	logEvery int64
}

// New creates a Tracker for a scan of known total size. log may be nil,
// in which case progress is tracked silently (used in tests).
func New(total int64, log *logrus.Entry) *Tracker {
	var b *bar.ProgressBar
	if total > 0 {
		b = bar.Default(total, "Scanning Takeout archive")
	}
	return &Tracker{
		started:  time.Now(),
		log:      log,
		bar:      b,
		logEvery: 100,
	}
}

// Add records n additional processed items, advancing the bar and, every
// logEvery items, emitting a structured progress line with the processed
// and error counts, rate and elapsed seconds (no ETA).
func (t *Tracker) Add(n int64) {
	processed := atomic.AddInt64(&t.processed, n)
	if t.bar != nil {
		t.bar.Add64(n)
	}
	if t.log == nil {
		return
	}
	if processed%t.logEvery < n || n >= t.logEvery {
		t.logProgress(processed)
	}
}

// AddError records a recoverable per-item failure for the final summary's
// processed/error accounting.
func (t *Tracker) AddError() {
	atomic.AddInt64(&t.errors, 1)
}

func (t *Tracker) logProgress(processed int64) {
	elapsed := time.Since(t.started).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(processed) / elapsed
	}
	t.log.WithFields(logrus.Fields{
		"processed":      processed,
		"errors":         atomic.LoadInt64(&t.errors),
		"rate_per_sec":   rate,
		"elapsed_seconds": elapsed,
	}).Info("scan progress")
}

// Finish closes out the visual progress bar.
func (t *Tracker) Finish() {
	if t.bar != nil {
		t.bar.Finish()
	}
}

// Processed returns the current processed count.
func (t *Tracker) Processed() int64 {
	return atomic.LoadInt64(&t.processed)
}

// Errors returns the current recoverable error count.
func (t *Tracker) Errors() int64 {
	return atomic.LoadInt64(&t.errors)
}

// Summary is the final counters/error-breakdown report spec §7 mandates
// the scanner always emit.
type Summary struct {
	TotalDiscovered int64
	Processed       int64
	New             int64
	Unchanged       int64
	Changed         int64
	Missing         int64
	Errors          int64
	Inconsistent    int64
	Duration        time.Duration
	ErrorsByCategory map[string]int64
}

// LogSummary emits the closing structured summary line plus one line per
// error category.
func LogSummary(log *logrus.Entry, s Summary) {
	if log == nil {
		return
	}
	log.WithFields(logrus.Fields{
		"total_discovered": s.TotalDiscovered,
		"processed":        s.Processed,
		"new":              s.New,
		"unchanged":        s.Unchanged,
		"changed":          s.Changed,
		"missing":          s.Missing,
		"errors":           s.Errors,
		"inconsistent":     s.Inconsistent,
		"duration_seconds": s.Duration.Seconds(),
	}).Info("scan complete")

	for category, count := range s.ErrorsByCategory {
		log.WithFields(logrus.Fields{
			"category": category,
			"count":    count,
		}).Warn("processing errors by category")
	}
}
